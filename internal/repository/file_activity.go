package repository

import (
	"context"
	"sync"

	"github.com/dragonmail/dragonmail/internal/model"
)

type fileActivityRepository struct {
	mu   sync.Mutex
	path string
}

func (r *fileActivityRepository) load() ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	if err := readFile(r.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *fileActivityRepository) Append(ctx context.Context, rec model.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	records = append(records, rec)
	return writeFile(r.path, records)
}

func (r *fileActivityRepository) List(ctx context.Context, filter ActivityFilter) ([]model.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	// Stored oldest first, returned newest first.
	out := make([]model.ActivityRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if filter.Channel != "" && rec.Channel != filter.Channel {
			continue
		}
		if filter.User != "" && rec.User != filter.User {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fileActivityRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeFile(r.path, []model.ActivityRecord{})
}
