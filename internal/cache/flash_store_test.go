package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestFlashStore_SingleRead(t *testing.T) {
	ctx := context.Background()
	store := NewFlashStore(newTestRedis(t), time.Minute)

	type payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := store.Put(ctx, "form:abc", payload{Name: "Anna", Email: "anna@student.ru"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got payload
	if err := store.Take(ctx, "form:abc", &got); err != nil {
		t.Fatalf("first Take failed: %v", err)
	}
	if got.Name != "Anna" || got.Email != "anna@student.ru" {
		t.Errorf("unexpected payload: %+v", got)
	}

	// Second read must miss: the value expires after a single read.
	err := store.Take(ctx, "form:abc", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound on second Take, got %v", err)
	}
}

func TestFlashStore_MissingKey(t *testing.T) {
	store := NewFlashStore(newTestRedis(t), time.Minute)

	var dest map[string]string
	err := store.Take(context.Background(), "nope", &dest)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestFlashStore_LocalFallback(t *testing.T) {
	ctx := context.Background()
	store := NewFlashStore(nil, time.Minute)

	if err := store.Put(ctx, "k", "v"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got string
	if err := store.Take(ctx, "k", &got); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if got != "v" {
		t.Errorf("got %q, want %q", got, "v")
	}

	if err := store.Take(ctx, "k", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound on second Take, got %v", err)
	}
}

func TestCacheHelper_GetSet(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestRedis(t), StatsCacheConfig.Prefix)

	type stats struct {
		Total int64 `json:"total"`
	}

	if err := helper.Set(ctx, "landing", stats{Total: 42}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got stats
	if err := helper.Get(ctx, "landing", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Total != 42 {
		t.Errorf("got %d, want 42", got.Total)
	}

	if err := helper.Delete(ctx, "landing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := helper.Get(ctx, "landing", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound after delete, got %v", err)
	}
}

func TestCacheHelper_NoClient(t *testing.T) {
	helper := NewCacheHelper(nil, "x:")

	var dest int
	if err := helper.Get(context.Background(), "k", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
}
