package repository

import (
	"context"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
)

// MainStore is the owner key for the shared transport store used by
// administrators. Regular users get a store keyed by their username.
const MainStore = ""

// UserRepository handles operator account persistence
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePasswordHash(ctx context.Context, username, hash string) error
	Delete(ctx context.Context, username string) error
	Count(ctx context.Context) (int, error)
}

// TransportRepository handles saved SMTP transport configurations.
// The owner argument selects the store: MainStore for the shared
// admin store, otherwise a username.
type TransportRepository interface {
	List(ctx context.Context, owner string) ([]model.TransportConfig, error)
	Get(ctx context.Context, owner, name string) (*model.TransportConfig, error)
	Save(ctx context.Context, owner string, t *model.TransportConfig) error
	Delete(ctx context.Context, owner, name string) error
}

// ActivityFilter narrows activity listings. Zero values match everything.
type ActivityFilter struct {
	Channel model.Channel
	User    string
	Limit   int
}

// ActivityRepository handles the send activity log
type ActivityRepository interface {
	Append(ctx context.Context, rec model.ActivityRecord) error
	// List returns records newest first.
	List(ctx context.Context, filter ActivityFilter) ([]model.ActivityRecord, error)
	Clear(ctx context.Context) error
}

// TaskRepository handles scheduled one-shot sends
type TaskRepository interface {
	Add(ctx context.Context, task *model.ScheduledTask) error
	Get(ctx context.Context, id string) (*model.ScheduledTask, error)
	List(ctx context.Context) ([]model.ScheduledTask, error)
	Delete(ctx context.Context, id string) error
	Due(ctx context.Context, now time.Time) ([]model.ScheduledTask, error)
	MarkCompleted(ctx context.Context, id string, executedAt time.Time) error
}

// SMSCredentialRepository stores the Azure Communication Services
// credential used for direct SMS sends.
type SMSCredentialRepository interface {
	Get(ctx context.Context) (*model.AzureSMSCredential, error)
	Save(ctx context.Context, cred *model.AzureSMSCredential) error
}

// Store bundles the repositories behind a single handle so callers can
// swap the file backend for Postgres without touching wiring.
type Store struct {
	Users          UserRepository
	Transports     TransportRepository
	Activity       ActivityRepository
	Tasks          TaskRepository
	SMSCredentials SMSCredentialRepository
}
