package repository

import (
	"context"
	"sync"

	"github.com/dragonmail/dragonmail/internal/model"
)

type fileSMSCredentialRepository struct {
	mu   sync.Mutex
	path string
}

func (r *fileSMSCredentialRepository) Get(ctx context.Context) (*model.AzureSMSCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cred model.AzureSMSCredential
	if err := readFile(r.path, &cred); err != nil {
		return nil, err
	}
	if !cred.Configured() {
		return nil, ErrNotFound
	}
	return &cred, nil
}

func (r *fileSMSCredentialRepository) Save(ctx context.Context, cred *model.AzureSMSCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeFile(r.path, cred)
}
