package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
)

// storedTask embeds storedTransport so the SMTP password survives
// until the task executes.
type storedTask struct {
	ID            string           `json:"id"`
	Channel       model.Channel    `json:"type"`
	Recipient     string           `json:"recipient"`
	Subject       string           `json:"subject"`
	Body          string           `json:"body"`
	Link          string           `json:"customLink"`
	Carrier       string           `json:"carrier,omitempty"`
	Transport     *storedTransport `json:"smtpConfig,omitempty"`
	ScheduledTime time.Time        `json:"scheduledTime"`
	Status        model.TaskStatus `json:"status"`
	CreatedBy     string           `json:"createdBy"`
	CreatedAt     time.Time        `json:"created"`
	ExecutedAt    *time.Time       `json:"executedAt,omitempty"`
}

type fileTaskRepository struct {
	mu   sync.Mutex
	path string
}

func toStoredTask(t *model.ScheduledTask) storedTask {
	s := storedTask{
		ID:            t.ID,
		Channel:       t.Channel,
		Recipient:     t.Recipient,
		Subject:       t.Subject,
		Body:          t.Body,
		Link:          t.Link,
		Carrier:       t.Carrier,
		ScheduledTime: t.ScheduledTime,
		Status:        t.Status,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		ExecutedAt:    t.ExecutedAt,
	}
	if t.Transport != nil {
		s.Transport = &storedTransport{
			Name:      t.Transport.Name,
			Host:      t.Transport.Host,
			Port:      t.Transport.Port,
			Email:     t.Transport.Email,
			Password:  t.Transport.Password,
			UseTLS:    t.Transport.UseTLS,
			CreatedAt: t.Transport.CreatedAt,
		}
	}
	return s
}

func toModelTask(s storedTask) model.ScheduledTask {
	t := model.ScheduledTask{
		ID:            s.ID,
		Channel:       s.Channel,
		Recipient:     s.Recipient,
		Subject:       s.Subject,
		Body:          s.Body,
		Link:          s.Link,
		Carrier:       s.Carrier,
		ScheduledTime: s.ScheduledTime,
		Status:        s.Status,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		ExecutedAt:    s.ExecutedAt,
	}
	if s.Transport != nil {
		cfg := toModel(*s.Transport)
		t.Transport = &cfg
	}
	return t
}

func (r *fileTaskRepository) load() ([]storedTask, error) {
	var tasks []storedTask
	if err := readFile(r.path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *fileTaskRepository) Add(ctx context.Context, task *model.ScheduledTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.ID == task.ID {
			return ErrDuplicate
		}
	}
	tasks = append(tasks, toStoredTask(task))
	return writeFile(r.path, tasks)
}

func (r *fileTaskRepository) Get(ctx context.Context, id string) (*model.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			m := toModelTask(t)
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileTaskRepository) List(ctx context.Context) ([]model.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.ScheduledTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toModelTask(t))
	}
	return out, nil
}

func (r *fileTaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load()
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return writeFile(r.path, tasks)
		}
	}
	return ErrNotFound
}

func (r *fileTaskRepository) Due(ctx context.Context, now time.Time) ([]model.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load()
	if err != nil {
		return nil, err
	}
	var due []model.ScheduledTask
	for _, t := range tasks {
		m := toModelTask(t)
		if m.Due(now) {
			due = append(due, m)
		}
	}
	return due, nil
}

func (r *fileTaskRepository) MarkCompleted(ctx context.Context, id string, executedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load()
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = model.TaskStatusCompleted
			tasks[i].ExecutedAt = &executedAt
			return writeFile(r.path, tasks)
		}
	}
	return ErrNotFound
}
