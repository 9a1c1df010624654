// Package store defines the persistence contract for user records.
// Three drivers implement it: memory, file and postgres.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rosterhq/roster/internal/model"
)

// Common errors shared by all store drivers.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// UserFilter defines filters for listing users.
type UserFilter struct {
	// Active filters by the active flag when set.
	Active *bool
	// NameContains performs a case-insensitive substring match on name.
	NameContains  string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// UserStore is the persistence contract for user records.
// List returns records ordered by (created_at, id) descending and a cursor
// for the next page; an empty cursor means there are no more results.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, filter UserFilter, cursor string, limit int) ([]*model.User, string, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close()
}
