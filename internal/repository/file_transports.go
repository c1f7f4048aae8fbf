package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
)

// storedTransport carries the SMTP password, which the model strips
// from JSON responses.
type storedTransport struct {
	Name      string    `json:"name"`
	Host      string    `json:"server"`
	Port      int       `json:"port"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	UseTLS    bool      `json:"useTls"`
	CreatedAt time.Time `json:"createdAt"`
}

// fileTransportRepository keeps the shared admin store in
// smtp_configs.json and each user's store under users/smtp_<name>.json.
type fileTransportRepository struct {
	mu  sync.Mutex
	dir string
}

func (r *fileTransportRepository) pathFor(owner string) (string, error) {
	if owner == MainStore {
		return filepath.Join(r.dir, "smtp_configs.json"), nil
	}
	if strings.ContainsAny(owner, `/\.`) {
		return "", fmt.Errorf("%w: owner %q", ErrInvalidInput, owner)
	}
	return filepath.Join(r.dir, "users", "smtp_"+owner+".json"), nil
}

func (r *fileTransportRepository) load(owner string) (string, []storedTransport, error) {
	path, err := r.pathFor(owner)
	if err != nil {
		return "", nil, err
	}
	var configs []storedTransport
	if err := readFile(path, &configs); err != nil {
		return "", nil, err
	}
	return path, configs, nil
}

func toModel(s storedTransport) model.TransportConfig {
	return model.TransportConfig{
		Name:      s.Name,
		Host:      s.Host,
		Port:      s.Port,
		Email:     s.Email,
		Password:  s.Password,
		UseTLS:    s.UseTLS,
		CreatedAt: s.CreatedAt,
	}
}

func (r *fileTransportRepository) List(ctx context.Context, owner string) ([]model.TransportConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, configs, err := r.load(owner)
	if err != nil {
		return nil, err
	}
	out := make([]model.TransportConfig, 0, len(configs))
	for _, c := range configs {
		out = append(out, toModel(c))
	}
	return out, nil
}

func (r *fileTransportRepository) Get(ctx context.Context, owner, name string) (*model.TransportConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, configs, err := r.load(owner)
	if err != nil {
		return nil, err
	}
	for _, c := range configs {
		if c.Name == name {
			t := toModel(c)
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileTransportRepository) Save(ctx context.Context, owner string, t *model.TransportConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, configs, err := r.load(owner)
	if err != nil {
		return err
	}
	for _, c := range configs {
		if c.Name == t.Name {
			return ErrDuplicate
		}
	}
	configs = append(configs, storedTransport{
		Name:      t.Name,
		Host:      t.Host,
		Port:      t.Port,
		Email:     t.Email,
		Password:  t.Password,
		UseTLS:    t.UseTLS,
		CreatedAt: t.CreatedAt,
	})
	return writeFile(path, configs)
}

func (r *fileTransportRepository) Delete(ctx context.Context, owner, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, configs, err := r.load(owner)
	if err != nil {
		return err
	}
	for i := range configs {
		if configs[i].Name == name {
			configs = append(configs[:i], configs[i+1:]...)
			return writeFile(path, configs)
		}
	}
	return ErrNotFound
}
