// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// UserStatus represents the computed status of a user record.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusDeleted  UserStatus = "deleted"
)

// User represents a member of the directory.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Age          int        `json:"age"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Status computes the current status of the user.
func (u *User) Status() UserStatus {
	if u.DeletedAt != nil {
		return UserStatusDeleted
	}
	if !u.Active {
		return UserStatusInactive
	}
	return UserStatusActive
}

// CachedUser represents user data stored in Redis cache.
// Uses string types for Redis hash compatibility.
type CachedUser struct {
	Name      string `redis:"name"`
	Email     string `redis:"email"`
	Age       string `redis:"age"`
	Active    string `redis:"active"`     // "1" or "0"
	DeletedAt string `redis:"deleted_at"` // Unix timestamp or empty
	CreatedAt string `redis:"created_at"` // Unix timestamp
	UpdatedAt string `redis:"updated_at"` // Unix timestamp
}

// ToCachedUser converts a User to its cache representation.
func (u *User) ToCachedUser() *CachedUser {
	cached := &CachedUser{
		Name:      u.Name,
		Email:     u.Email,
		Age:       strconv.Itoa(u.Age),
		Active:    "0",
		CreatedAt: strconv.FormatInt(u.CreatedAt.Unix(), 10),
		UpdatedAt: strconv.FormatInt(u.UpdatedAt.Unix(), 10),
	}
	if u.Active {
		cached.Active = "1"
	}
	if u.DeletedAt != nil {
		cached.DeletedAt = strconv.FormatInt(u.DeletedAt.Unix(), 10)
	}
	return cached
}

// ToUser reconstructs a User from its cache representation.
// The password hash is never cached.
func (c *CachedUser) ToUser(id string) *User {
	user := &User{
		ID:     id,
		Name:   c.Name,
		Email:  c.Email,
		Active: c.Active == "1",
	}

	if age, err := strconv.Atoi(c.Age); err == nil {
		user.Age = age
	}
	if ts, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
		user.CreatedAt = time.Unix(ts, 0).UTC()
	}
	if ts, err := strconv.ParseInt(c.UpdatedAt, 10, 64); err == nil {
		user.UpdatedAt = time.Unix(ts, 0).UTC()
	}
	if c.DeletedAt != "" {
		if ts, err := strconv.ParseInt(c.DeletedAt, 10, 64); err == nil {
			t := time.Unix(ts, 0).UTC()
			user.DeletedAt = &t
		}
	}

	return user
}
