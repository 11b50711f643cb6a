package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"draftdesk/internal/domain/models"
	"draftdesk/internal/domain/services"

	"gopkg.in/yaml.v3"
)

var _ services.SessionStore = (*FileStore)(nil)

// FileStore keeps the session in a YAML file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the saved session or nil when no session file exists.
func (s *FileStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session models.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session file %s: %w", s.path, err)
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes the session atomically (temp file + rename).
func (s *FileStore) Save(session *models.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
