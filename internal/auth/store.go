package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

// Directory is the on-disk user directory
type Directory struct {
	Users []models.User `json:"users"`
}

// FindByID returns the user with id, or nil
func (d *Directory) FindByID(id string) *models.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// FindByUsername returns the user with username, or nil
func (d *Directory) FindByUsername(username string) *models.User {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Directory) clone() *Directory {
	out := &Directory{Users: make([]models.User, len(d.Users))}
	for i, u := range d.Users {
		u.Sessions = append([]models.Session(nil), u.Sessions...)
		out.Users[i] = u
	}
	return out
}

// UserStore holds the user directory
type UserStore interface {
	// View runs fn against a read-only view of the directory
	View(fn func(dir *Directory) error) error
	// Update runs fn against a copy of the directory and persists it if fn succeeds
	Update(fn func(dir *Directory) error) error
}

// FileUserStore keeps the directory in memory and writes it through to a JSON file
type FileUserStore struct {
	path   string
	mu     sync.RWMutex
	dir    *Directory
	logger zerolog.Logger
}

// NewFileUserStore loads the directory at path. A missing file starts an empty directory.
func NewFileUserStore(path string, logger zerolog.Logger) (*FileUserStore, error) {
	s := &FileUserStore{
		path:   path,
		dir:    &Directory{Users: make([]models.User, 0)},
		logger: logger.With().Str("component", "user_store").Logger(),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info().Str("path", path).Msg("user directory not found, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user directory: %w", err)
	}

	if err := json.Unmarshal(data, s.dir); err != nil {
		return nil, fmt.Errorf("failed to parse user directory: %w", err)
	}
	if s.dir.Users == nil {
		s.dir.Users = make([]models.User, 0)
	}

	s.logger.Info().
		Str("path", path).
		Int("users", len(s.dir.Users)).
		Msg("loaded user directory")

	return s, nil
}

// View runs fn under a read lock
func (s *FileUserStore) View(fn func(dir *Directory) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.dir)
}

// Update applies fn to a copy, persists the copy and only then makes it current
func (s *FileUserStore) Update(fn func(dir *Directory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.dir.clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.dir = next
	return nil
}

// persist writes the directory atomically: temp file in the same directory, then rename
func (s *FileUserStore) persist(dir *Directory) error {
	data, err := json.MarshalIndent(dir, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user directory: %w", err)
	}

	parent := filepath.Dir(s.path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create user directory folder: %w", err)
	}

	tmp, err := os.CreateTemp(parent, ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user directory: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync user directory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to set user directory permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace user directory: %w", err)
	}
	return nil
}
