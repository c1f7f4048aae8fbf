package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dragonmail/dragonmail/internal/database"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/lib/pq"
)

type pgTransportRepository struct {
	db *database.Postgres
}

func (r *pgTransportRepository) List(ctx context.Context, owner string) ([]model.TransportConfig, error) {
	query := `
		SELECT name, host, port, email, password, use_tls, created_at
		FROM transports
		WHERE owner = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list transports: %w", err)
	}
	defer rows.Close()

	var configs []model.TransportConfig
	for rows.Next() {
		var t model.TransportConfig
		if err := rows.Scan(&t.Name, &t.Host, &t.Port, &t.Email, &t.Password, &t.UseTLS, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transport: %w", err)
		}
		configs = append(configs, t)
	}
	return configs, rows.Err()
}

func (r *pgTransportRepository) Get(ctx context.Context, owner, name string) (*model.TransportConfig, error) {
	query := `
		SELECT name, host, port, email, password, use_tls, created_at
		FROM transports
		WHERE owner = $1 AND name = $2
	`
	var t model.TransportConfig
	err := r.db.QueryRowContext(ctx, query, owner, name).Scan(
		&t.Name, &t.Host, &t.Port, &t.Email, &t.Password, &t.UseTLS, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transport: %w", err)
	}
	return &t, nil
}

func (r *pgTransportRepository) Save(ctx context.Context, owner string, t *model.TransportConfig) error {
	query := `
		INSERT INTO transports (owner, name, host, port, email, password, use_tls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		owner, t.Name, t.Host, t.Port, t.Email, t.Password, t.UseTLS, t.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to save transport: %w", err)
	}
	return nil
}

func (r *pgTransportRepository) Delete(ctx context.Context, owner, name string) error {
	query := `DELETE FROM transports WHERE owner = $1 AND name = $2`
	result, err := r.db.ExecContext(ctx, query, owner, name)
	if err != nil {
		return fmt.Errorf("failed to delete transport: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
