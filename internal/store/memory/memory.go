// Package memory provides a mutex-guarded in-memory user store.
// It backs the development configuration and the unit tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rosterhq/roster/internal/model"
	"github.com/rosterhq/roster/internal/store"
)

// Store is a thread-safe in-memory user store.
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{users: make(map[string]*model.User)}
}

// CreateUser inserts a new user. Returns store.ErrEmailExists if the
// email is already taken by a live record.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(user.Email, "") {
		return store.ErrEmailExists
	}

	u := *user
	s.users[u.ID] = &u
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	u := *user
	return &u, nil
}

// GetUserByEmail retrieves a user by email. Comparison is case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == needle {
			u := *user
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// ListUsers returns a filtered page of users ordered by (created_at, id)
// descending.
func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter, cursor string, limit int) ([]*model.User, string, error) {
	var cursorData *store.Cursor
	if cursor != "" {
		var err error
		cursorData, err = store.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
	}

	s.mu.RLock()
	matched := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		if !matches(user, filter) {
			continue
		}
		u := *user
		matched = append(matched, &u)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if cursorData != nil {
		idx := 0
		for ; idx < len(matched); idx++ {
			u := matched[idx]
			if u.CreatedAt.Before(cursorData.CreatedAt) ||
				(u.CreatedAt.Equal(cursorData.CreatedAt) && u.ID < cursorData.ID) {
				break
			}
		}
		matched = matched[idx:]
	}

	var nextCursor string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		nextCursor = store.EncodeCursor(&store.Cursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}

	return matched, nextCursor, nil
}

// UpdateUser replaces the stored record for the user's ID.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}

	if s.emailTakenLocked(user.Email, user.ID) {
		return store.ErrEmailExists
	}

	u := *user
	s.users[u.ID] = &u
	return nil
}

// DeleteUser removes a user. The in-memory driver deletes hard.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}

	delete(s.users, id)
	return nil
}

// Ping always succeeds for the in-memory driver.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory driver.
func (s *Store) Close() {}

// Snapshot returns a copy of all stored users. Used by the file driver
// to persist state.
func (s *Store) Snapshot() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	return users
}

// Load replaces the store contents with the given users.
func (s *Store) Load(users []*model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*model.User, len(users))
	for _, user := range users {
		u := *user
		s.users[u.ID] = &u
	}
}

// emailTakenLocked reports whether a live record other than excludeID
// already uses the email. Must be called with the lock held.
func (s *Store) emailTakenLocked(email, excludeID string) bool {
	needle := strings.ToLower(email)
	for id, user := range s.users {
		if id == excludeID {
			continue
		}
		if strings.ToLower(user.Email) == needle {
			return true
		}
	}
	return false
}

// matches reports whether the user passes the filter.
func matches(user *model.User, filter store.UserFilter) bool {
	if filter.Active != nil && user.Active != *filter.Active {
		return false
	}
	if filter.NameContains != "" &&
		!strings.Contains(strings.ToLower(user.Name), strings.ToLower(filter.NameContains)) {
		return false
	}
	if filter.CreatedAfter != nil && user.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if filter.CreatedBefore != nil && user.CreatedAt.After(*filter.CreatedBefore) {
		return false
	}
	return true
}
