package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
)

// storedUser is the on-disk shape. The model hides the password hash
// from JSON responses, so the file record carries it explicitly.
type storedUser struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"passwordHash"`
	Role         model.Role `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type fileUserRepository struct {
	mu   sync.Mutex
	path string
}

func (r *fileUserRepository) load() ([]storedUser, error) {
	var users []storedUser
	if err := readFile(r.path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *fileUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}
	users = append(users, storedUser{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
	})
	return writeFile(r.path, users)
}

func (r *fileUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return &model.User{
				Username:     u.Username,
				PasswordHash: u.PasswordHash,
				Role:         u.Role,
				CreatedAt:    u.CreatedAt,
			}, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileUserRepository) List(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.load()
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(stored))
	for _, u := range stored {
		users = append(users, model.User{
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	return users, nil
}

func (r *fileUserRepository) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == username {
			users[i].PasswordHash = hash
			return writeFile(r.path, users)
		}
	}
	return ErrNotFound
}

func (r *fileUserRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == username {
			users = append(users[:i], users[i+1:]...)
			return writeFile(r.path, users)
		}
	}
	return ErrNotFound
}

func (r *fileUserRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
