// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rosterhq/roster/internal/auth"
	"github.com/rosterhq/roster/internal/cache"
	"github.com/rosterhq/roster/internal/metrics"
	"github.com/rosterhq/roster/internal/model"
	"github.com/rosterhq/roster/internal/store"
)

// Service errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrInvalidName      = errors.New("name must not be empty")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidAge       = errors.New("age must be between 0 and 150")
	ErrPasswordTooShort = errors.New("password too short")
	ErrInvalidCursor    = errors.New("invalid pagination cursor")
)

const (
	maxNameLength     = 100
	maxEmailLength    = 254
	minPasswordLength = 8
	minAge            = 0
	maxAge            = 150
)

// UserService handles user business logic.
type UserService struct {
	store   store.UserStore
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
// cache may be nil, in which case lookups always hit the store.
func NewUserService(st store.UserStore, c *cache.Cache, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   st,
		cache:   c,
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Age      int
	Active   *bool
	Password string
}

// CreateUser validates the input and inserts a new user.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	email, err := validateEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if err := validateAge(input.Age); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	var passwordHash string
	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		passwordHash, err = auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		Age:          input.Age,
		Active:       active,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()

	return user, nil
}

// GetUser retrieves a user by ID.
// This is the hot path - cache-first with negative caching when a cache
// is configured.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLookupDuration(time.Since(start))
	}()

	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, id)
		if err == nil {
			s.metrics.IncLookupCacheHit()
			user := cached.ToUser(id)
			if user.DeletedAt != nil {
				return nil, ErrUserNotFound
			}
			return user, nil
		}

		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncLookupCacheMiss()
			isNegative, _ := s.cache.IsNegativelyCached(ctx, id)
			if isNegative {
				return nil, ErrUserNotFound
			}
		}
		// On Redis errors fall through to the store.
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, id)
			}
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, user); err != nil {
			// Log upstream; a stale cache entry is acceptable
			_ = err
		}
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address (case-insensitive).
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// ListUsersInput defines input for listing users.
type ListUsersInput struct {
	Active        *bool
	NameContains  string
	Cursor        string
	Limit         int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ListUsersOutput defines output for listing users.
type ListUsersOutput struct {
	Users      []*model.User
	NextCursor string
	HasMore    bool
}

// ListUsers retrieves a paginated list of users.
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	} else if input.Limit > 100 {
		input.Limit = 100
	}

	filter := store.UserFilter{
		Active:        input.Active,
		NameContains:  input.NameContains,
		CreatedAfter:  input.CreatedAfter,
		CreatedBefore: input.CreatedBefore,
	}

	users, nextCursor, err := s.store.ListUsers(ctx, filter, input.Cursor, input.Limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	return &ListUsersOutput{
		Users:      users,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// UpdateUserInput defines input for updating a user.
// Nil fields are left unchanged; PUT handlers set every field.
type UpdateUserInput struct {
	ID     string
	Name   *string
	Email  *string
	Age    *int
	Active *bool
}

// UpdateUser updates a user's mutable fields.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}

	if input.Email != nil {
		email, err := validateEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if input.Age != nil {
		if err := validateAge(*input.Age); err != nil {
			return nil, err
		}
		user.Age = *input.Age
	}

	if input.Active != nil {
		user.Active = *input.Active
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, store.ErrEmailExists):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncUserUpdated()

	if s.cache != nil {
		if err := s.cache.DeleteUser(ctx, user.ID); err != nil {
			// Eventual consistency is acceptable here
			_ = err
		}
	}

	return user, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.metrics.IncUserDeleted()

	if s.cache != nil {
		if err := s.cache.DeleteUser(ctx, id); err != nil {
			_ = err
		}
	}

	return nil
}

// VerifyPassword checks a candidate password against the stored hash.
// Users created without a password never verify.
func (s *UserService) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	if user.PasswordHash == "" {
		return false, nil
	}

	return auth.VerifyPassword(password, user.PasswordHash)
}

// validateName trims and checks the user name.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if len(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// validateEmail parses the address and returns it lowercased.
func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(email), nil
}

// validateAge checks the age bounds.
func validateAge(age int) error {
	if age < minAge || age > maxAge {
		return ErrInvalidAge
	}
	return nil
}
