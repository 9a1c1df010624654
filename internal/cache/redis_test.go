package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/model"
	"github.com/rosterhq/roster/internal/testutil"
)

// newTestCache connects to the Redis named by REDIS_URL and flushes it.
// Tests are skipped when REDIS_URL is not set.
func newTestCache(t *testing.T) (*Cache, context.Context) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	t.Cleanup(cancel)

	c, err := New(ctx, redisURL, Options{PoolSize: 4, MinIdleConns: 1})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	return c, ctx
}

func TestUserCacheRoundTrip(t *testing.T) {
	c, ctx := newTestCache(t)

	now := time.Now().UTC().Truncate(time.Second)
	user := &model.User{
		ID:        testutil.UniqueID("cache"),
		Name:      "Ana García",
		Email:     "ana@example.com",
		Age:       28,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := c.GetUser(ctx, user.ID); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss before set, got %v", err)
	}

	if err := c.SetUser(ctx, user); err != nil {
		t.Fatalf("set: %v", err)
	}

	cached, err := c.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	got := cached.ToUser(user.ID)
	if got.Name != user.Name || got.Email != user.Email || got.Age != user.Age || !got.Active {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("created_at mismatch: got %v, want %v", got.CreatedAt, user.CreatedAt)
	}

	if err := c.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetUser(ctx, user.ID); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestNegativeCacheLifecycle(t *testing.T) {
	c, ctx := newTestCache(t)

	id := testutil.UniqueID("neg")

	cached, err := c.IsNegativelyCached(ctx, id)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if cached {
		t.Fatal("fresh id should not be negatively cached")
	}

	if err := c.SetNegativeCache(ctx, id); err != nil {
		t.Fatalf("set negative: %v", err)
	}

	cached, err = c.IsNegativelyCached(ctx, id)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !cached {
		t.Fatal("expected negative cache hit")
	}

	// Caching the real user clears the tombstone.
	now := time.Now().UTC()
	if err := c.SetUser(ctx, &model.User{ID: id, Name: "Back", Email: "back@example.com", Age: 20, Active: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("set user: %v", err)
	}
	cached, err = c.IsNegativelyCached(ctx, id)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if cached {
		t.Fatal("negative cache should be cleared after SetUser")
	}
}

func TestCheckIPRateLimit(t *testing.T) {
	c, ctx := newTestCache(t)

	ip := "203.0.113.7"
	burst := 3

	for i := 0; i < burst; i++ {
		result, err := c.CheckIPRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}

	result, err := c.CheckIPRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("check over burst: %v", err)
	}
	if result.Allowed {
		t.Fatal("request over burst should be denied")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("expected positive RetryAfter, got %v", result.RetryAfter)
	}
}
