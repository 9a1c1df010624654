package cache

import (
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/model"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestCachedUserRoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	updated := created.Add(2 * time.Hour)

	user := &model.User{
		ID:        "01HV5QZ2J8X2M4T9R6W3K8P0AB",
		Name:      "Ana García",
		Email:     "ana@example.com",
		Age:       31,
		Active:    true,
		CreatedAt: created,
		UpdatedAt: updated,
	}

	got := user.ToCachedUser().ToUser(user.ID)

	if got.Name != user.Name {
		t.Errorf("Name = %q, want %q", got.Name, user.Name)
	}
	if got.Email != user.Email {
		t.Errorf("Email = %q, want %q", got.Email, user.Email)
	}
	if got.Age != user.Age {
		t.Errorf("Age = %d, want %d", got.Age, user.Age)
	}
	if !got.Active {
		t.Error("Active should survive the round trip")
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
	}
	if got.DeletedAt != nil {
		t.Error("DeletedAt should stay nil")
	}
}

func TestCachedUserDeleted(t *testing.T) {
	t.Parallel()

	deleted := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{
		ID:        "01HV5QZ2J8X2M4T9R6W3K8P0CD",
		Name:      "Luis Pérez",
		Email:     "luis@example.com",
		Age:       45,
		DeletedAt: &deleted,
		CreatedAt: deleted.Add(-24 * time.Hour),
		UpdatedAt: deleted,
	}

	got := user.ToCachedUser().ToUser(user.ID)

	if got.DeletedAt == nil || !got.DeletedAt.Equal(deleted) {
		t.Errorf("DeletedAt = %v, want %v", got.DeletedAt, deleted)
	}
	if got.Status() != model.UserStatusDeleted {
		t.Errorf("Status = %q, want %q", got.Status(), model.UserStatusDeleted)
	}
}
