package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore holds OAuth state values between start and callback.
// Consume succeeds at most once per state.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// MemoryStateStore keeps states in process memory.
type MemoryStateStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{items: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.items {
		if now.After(exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return !s.now().After(exp), nil
}

const redisStatePrefix = "oauth:state:"

// RedisStateStore shares states across instances. Expiry is left to Redis.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore connects using a redis:// URL.
func NewRedisStateStore(ctx context.Context, rawURL string) (*RedisStateStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStateStore{client: client}, nil
}

func (s *RedisStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, redisStatePrefix+state, "1", ttl).Err()
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	n, err := s.client.Del(ctx, redisStatePrefix+state).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisStateStore) Close() error {
	return s.client.Close()
}
