package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dragonmail/dragonmail/internal/database"
	"github.com/dragonmail/dragonmail/internal/model"
)

// pgSMSCredentialRepository keeps a single row; saving replaces it.
type pgSMSCredentialRepository struct {
	db *database.Postgres
}

func (r *pgSMSCredentialRepository) Get(ctx context.Context) (*model.AzureSMSCredential, error) {
	query := `SELECT connection_string, phone_number FROM sms_credentials WHERE id = 1`
	var cred model.AzureSMSCredential
	err := r.db.QueryRowContext(ctx, query).Scan(&cred.ConnectionString, &cred.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get SMS credential: %w", err)
	}
	if !cred.Configured() {
		return nil, ErrNotFound
	}
	return &cred, nil
}

func (r *pgSMSCredentialRepository) Save(ctx context.Context, cred *model.AzureSMSCredential) error {
	query := `
		INSERT INTO sms_credentials (id, connection_string, phone_number)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET connection_string = $1, phone_number = $2
	`
	if _, err := r.db.ExecContext(ctx, query, cred.ConnectionString, cred.PhoneNumber); err != nil {
		return fmt.Errorf("failed to save SMS credential: %w", err)
	}
	return nil
}
