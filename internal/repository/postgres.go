package repository

import (
	"github.com/dragonmail/dragonmail/internal/database"
)

// NewPostgresStore returns a Store backed by PostgreSQL. The schema is
// managed by the migrate CLI under cmd/migrate.
func NewPostgresStore(db *database.Postgres) *Store {
	return &Store{
		Users:          &pgUserRepository{db: db},
		Transports:     &pgTransportRepository{db: db},
		Activity:       &pgActivityRepository{db: db},
		Tasks:          &pgTaskRepository{db: db},
		SMSCredentials: &pgSMSCredentialRepository{db: db},
	}
}
