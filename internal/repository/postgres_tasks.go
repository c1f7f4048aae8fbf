package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dragonmail/dragonmail/internal/database"
	"github.com/dragonmail/dragonmail/internal/model"
)

type pgTaskRepository struct {
	db *database.Postgres
}

// The embedded transport is stored as a JSONB column using the on-disk
// shape, so the SMTP password round-trips.
func encodeTransport(t *model.TransportConfig) ([]byte, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(storedTransport{
		Name:      t.Name,
		Host:      t.Host,
		Port:      t.Port,
		Email:     t.Email,
		Password:  t.Password,
		UseTLS:    t.UseTLS,
		CreatedAt: t.CreatedAt,
	})
}

func decodeTransport(data []byte) (*model.TransportConfig, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s storedTransport
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode transport: %w", err)
	}
	t := toModel(s)
	return &t, nil
}

func (r *pgTaskRepository) Add(ctx context.Context, task *model.ScheduledTask) error {
	transport, err := encodeTransport(task.Transport)
	if err != nil {
		return fmt.Errorf("failed to encode transport: %w", err)
	}
	query := `
		INSERT INTO scheduled_tasks (id, channel, recipient, subject, body, link, carrier,
		       transport, scheduled_time, status, created_by, created_at, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		task.ID,
		task.Channel,
		task.Recipient,
		task.Subject,
		task.Body,
		task.Link,
		task.Carrier,
		transport,
		task.ScheduledTime,
		task.Status,
		task.CreatedBy,
		task.CreatedAt,
		task.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) scanTask(scan func(dest ...interface{}) error) (*model.ScheduledTask, error) {
	var task model.ScheduledTask
	var transport []byte
	err := scan(
		&task.ID,
		&task.Channel,
		&task.Recipient,
		&task.Subject,
		&task.Body,
		&task.Link,
		&task.Carrier,
		&transport,
		&task.ScheduledTime,
		&task.Status,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.ExecutedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	task.Transport, err = decodeTransport(transport)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

const taskColumns = `id, channel, recipient, subject, body, link, carrier,
       transport, scheduled_time, status, created_by, created_at, executed_at`

func (r *pgTaskRepository) Get(ctx context.Context, id string) (*model.ScheduledTask, error) {
	query := `SELECT ` + taskColumns + ` FROM scheduled_tasks WHERE id = $1`
	return r.scanTask(r.db.QueryRowContext(ctx, query, id).Scan)
}

func (r *pgTaskRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.ScheduledTask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.ScheduledTask
	for rows.Next() {
		task, err := r.scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *pgTaskRepository) List(ctx context.Context) ([]model.ScheduledTask, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY scheduled_time`)
}

func (r *pgTaskRepository) Due(ctx context.Context, now time.Time) ([]model.ScheduledTask, error) {
	query := `SELECT ` + taskColumns + `
		FROM scheduled_tasks
		WHERE status = $1 AND scheduled_time <= $2
		ORDER BY scheduled_time`
	return r.list(ctx, query, model.TaskStatusPending, now)
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgTaskRepository) MarkCompleted(ctx context.Context, id string, executedAt time.Time) error {
	query := `UPDATE scheduled_tasks SET status = $1, executed_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, model.TaskStatusCompleted, executedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark task completed: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
