package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultFlashTTL bounds how long unread flash data survives.
const DefaultFlashTTL = 10 * time.Minute

// FlashStore is a short-lived server-side key-value store scoped to a single
// request/response round trip. Values expire after one read (GETDEL) or after
// the TTL, whichever comes first. Falls back to an in-process map when redis
// is not configured, which is fine for a single instance in development.
type FlashStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]flashEntry
}

type flashEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewFlashStore(client *redis.Client, ttl time.Duration) *FlashStore {
	if ttl <= 0 {
		ttl = DefaultFlashTTL
	}
	return &FlashStore{
		client: client,
		prefix: "flash:",
		ttl:    ttl,
		local:  make(map[string]flashEntry),
	}
}

// Put stores value under key until it is read once or the TTL elapses.
func (s *FlashStore) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("flash marshal error: %w", err)
	}

	if s.client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.local[key] = flashEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
		return nil
	}

	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("flash set error: %w", err)
	}
	return nil
}

// Take reads and removes the value in one step. Returns ErrCacheNotFound when
// the key is absent, already consumed, or expired.
func (s *FlashStore) Take(ctx context.Context, key string, dest interface{}) error {
	var data []byte

	if s.client == nil {
		s.mu.Lock()
		entry, ok := s.local[key]
		if ok {
			delete(s.local, key)
		}
		s.mu.Unlock()
		if !ok || time.Now().After(entry.expiresAt) {
			return ErrCacheNotFound
		}
		data = entry.data
	} else {
		raw, err := s.client.GetDel(ctx, s.prefix+key).Result()
		if err != nil {
			if err == redis.Nil {
				return ErrCacheNotFound
			}
			return fmt.Errorf("flash get error: %w", err)
		}
		data = []byte(raw)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("flash unmarshal error: %w", err)
	}
	return nil
}
