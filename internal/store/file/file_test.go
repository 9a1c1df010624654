package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/model"
	"github.com/rosterhq/roster/internal/store"
)

func testUser(id, email string) *model.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.User{
		ID:        id,
		Name:      "Ana",
		Email:     email,
		Age:       31,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	users, _, err := s.ListUsers(context.Background(), store.UserFilter{}, "", 10)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty store, got %d users", len(users))
	}
}

func TestPersistAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.CreateUser(ctx, testUser("u1", "ana@example.com")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreateUser(ctx, testUser("u2", "luis@example.com")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.DeleteUser(ctx, "u2"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	s.Close()

	// Reopen and verify state survived
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserByID after reload failed: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Errorf("unexpected email %q", got.Email)
	}

	if _, err := reopened.GetUserByID(ctx, "u2"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("deleted user should not survive reload, got %v", err)
	}
}

func TestSnapshotIsValidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := s.CreateUser(ctx, testUser("u1", "ana@example.com")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot should exist after create: %v", err)
	}

	var snap struct {
		Users []json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(snap.Users) != 1 {
		t.Errorf("expected 1 user in snapshot, got %d", len(snap.Users))
	}

	// No leftover temp file after the atomic swap
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file should not remain after persist")
	}
}

func TestOpenCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
}

func TestCreateDuplicateDoesNotPersist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := s.CreateUser(ctx, testUser("u1", "ana@example.com")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreateUser(ctx, testUser("u2", "ana@example.com")); !errors.Is(err, store.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	users, _, err := reopened.ListUsers(ctx, store.UserFilter{}, "", 10)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user after rejected duplicate, got %d", len(users))
	}
}
