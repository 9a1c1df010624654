// Package file provides a user store persisted as a JSON snapshot on disk.
// It keeps the working set in memory and rewrites the snapshot on every
// mutation with a write-temp-then-rename swap, so a crash leaves either
// the old file or the new one, never a corrupt one.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rosterhq/roster/internal/model"
	"github.com/rosterhq/roster/internal/store"
	"github.com/rosterhq/roster/internal/store/memory"
)

// snapshot is the on-disk format.
type snapshot struct {
	Users []*model.User `json:"users"`
}

// Store is a JSON-file-backed user store.
type Store struct {
	mem  *memory.Store
	path string

	// Serializes snapshot writes. The memory store guards its own state;
	// this lock only orders the persist step across concurrent mutations.
	writeMu sync.Mutex
}

// Open loads the snapshot at path, creating parent directories as needed.
// A missing file starts an empty store.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{
		mem:  memory.New(),
		path: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	s.mem.Load(snap.Users)
	return s, nil
}

// CreateUser inserts a new user and persists the snapshot.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.mem.CreateUser(ctx, user); err != nil {
		return err
	}
	return s.persist()
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.mem.GetUserByID(ctx, id)
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.mem.GetUserByEmail(ctx, email)
}

// ListUsers returns a filtered page of users.
func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter, cursor string, limit int) ([]*model.User, string, error) {
	return s.mem.ListUsers(ctx, filter, cursor, limit)
}

// UpdateUser replaces a stored record and persists the snapshot.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	if err := s.mem.UpdateUser(ctx, user); err != nil {
		return err
	}
	return s.persist()
}

// DeleteUser removes a user and persists the snapshot.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.mem.DeleteUser(ctx, id); err != nil {
		return err
	}
	return s.persist()
}

// Ping verifies the data directory is still writable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// Close flushes a final snapshot.
func (s *Store) Close() {
	_ = s.persist()
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// persist writes the current state to disk atomically.
func (s *Store) persist() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := snapshot{Users: s.mem.Snapshot()}
	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}
