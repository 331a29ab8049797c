package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]counter
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]counter)}
}

func (s *memoryStore) Ensure(ctx context.Context, userID string, now time.Time) (counter, error) {
	if err := ctx.Err(); err != nil {
		return counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, now), nil
}

func (s *memoryStore) Increment(ctx context.Context, userID string, now time.Time) (counter, error) {
	if err := ctx.Err(); err != nil {
		return counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureLocked(userID, now)
	c.Used++
	s.data[userID] = c
	return c, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string, now time.Time) (counter, error) {
	if err := ctx.Err(); err != nil {
		return counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := counter{Used: 0, PeriodStart: now.UTC()}
	s.data[userID] = c
	return c, nil
}

func (s *memoryStore) ensureLocked(userID string, now time.Time) counter {
	c, ok := s.data[userID]
	if !ok {
		c = counter{PeriodStart: now.UTC()}
	}
	c, _ = rollover(c, now)
	s.data[userID] = c
	return c
}
