package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/model"
	"github.com/rosterhq/roster/internal/store"
)

func newUser(id, name, email string, createdAt time.Time) *model.User {
	return &model.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Age:       30,
		Active:    true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("u1", "Ana", "ana@example.com", now)
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Errorf("unexpected email %q", got.Email)
	}

	// Returned value is a copy; mutating it must not affect the store
	got.Name = "mutated"
	again, _ := s.GetUserByID(ctx, "u1")
	if again.Name != "Ana" {
		t.Error("store should not expose internal state")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.CreateUser(ctx, newUser("u1", "Ana", "ana@example.com", now)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	err := s.CreateUser(ctx, newUser("u2", "Otra", "ANA@example.com", now))
	if !errors.Is(err, store.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, newUser("u1", "Ana", "ana@example.com", time.Now().UTC())); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "ANA@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("unexpected user %q", got.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.CreateUser(ctx, newUser("u1", "Ana", "ana@example.com", now)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreateUser(ctx, newUser("u2", "Luis", "luis@example.com", now)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// Updating own record keeping the same email is fine
	u1 := newUser("u1", "Ana María", "ana@example.com", now)
	if err := s.UpdateUser(ctx, u1); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	// Taking another live user's email conflicts
	u2 := newUser("u2", "Luis", "ana@example.com", now)
	if err := s.UpdateUser(ctx, u2); !errors.Is(err, store.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	// Unknown ID
	missing := newUser("nope", "X", "x@example.com", now)
	if err := s.UpdateUser(ctx, missing); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, newUser("u1", "Ana", "ana@example.com", time.Now().UTC())); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := s.DeleteUser(ctx, "u1"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// Deleted user's email is free again
	if err := s.CreateUser(ctx, newUser("u2", "Ana", "ana@example.com", time.Now().UTC())); err != nil {
		t.Fatalf("email should be reusable after delete: %v", err)
	}
}

func TestListUsersOrderingAndPaging(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		u := newUser(
			fmt.Sprintf("u%d", i),
			fmt.Sprintf("User %d", i),
			fmt.Sprintf("u%d@example.com", i),
			base.Add(time.Duration(i)*time.Minute),
		)
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	page1, cursor, err := s.ListUsers(ctx, store.UserFilter{}, "", 2)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 users, got %d", len(page1))
	}
	// Newest first
	if page1[0].ID != "u4" || page1[1].ID != "u3" {
		t.Errorf("unexpected order: %s, %s", page1[0].ID, page1[1].ID)
	}
	if cursor == "" {
		t.Fatal("expected next cursor")
	}

	page2, cursor, err := s.ListUsers(ctx, store.UserFilter{}, cursor, 2)
	if err != nil {
		t.Fatalf("ListUsers page 2 failed: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != "u2" || page2[1].ID != "u1" {
		t.Errorf("unexpected page 2: %+v", page2)
	}

	page3, cursor, err := s.ListUsers(ctx, store.UserFilter{}, cursor, 2)
	if err != nil {
		t.Fatalf("ListUsers page 3 failed: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != "u0" {
		t.Errorf("unexpected page 3: %+v", page3)
	}
	if cursor != "" {
		t.Error("expected empty cursor on final page")
	}
}

func TestListUsersInvalidCursor(t *testing.T) {
	t.Parallel()

	s := New()

	_, _, err := s.ListUsers(context.Background(), store.UserFilter{}, "!!not-base64!!", 10)
	if !errors.Is(err, store.ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser(
				fmt.Sprintf("u%d", i),
				fmt.Sprintf("User %d", i),
				fmt.Sprintf("u%d@example.com", i),
				time.Now().UTC(),
			)
			if err := s.CreateUser(ctx, u); err != nil {
				t.Errorf("CreateUser failed: %v", err)
			}
			if _, err := s.GetUserByID(ctx, u.ID); err != nil {
				t.Errorf("GetUserByID failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	users, _, err := s.ListUsers(ctx, store.UserFilter{}, "", 100)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 20 {
		t.Errorf("expected 20 users, got %d", len(users))
	}
}
