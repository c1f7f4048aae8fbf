package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// NewFileStore returns a Store backed by JSON files under dir. Each
// repository guards its files with a mutex, so the backend is safe for
// concurrent handlers but assumes a single server process owns dir.
func NewFileStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		Users:          &fileUserRepository{path: filepath.Join(dir, "users.json")},
		Transports:     &fileTransportRepository{dir: dir},
		Activity:       &fileActivityRepository{path: filepath.Join(dir, "sent_messages.json")},
		Tasks:          &fileTaskRepository{path: filepath.Join(dir, "scheduled_tasks.json")},
		SMSCredentials: &fileSMSCredentialRepository{path: filepath.Join(dir, "azure_sms.json")},
	}, nil
}

// readFile loads a JSON document into v. A missing file is not an
// error; v is left at its zero value.
func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filepath.Base(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
