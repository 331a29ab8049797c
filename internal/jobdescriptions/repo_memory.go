package jobdescriptions

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items []JobDescription
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(ctx context.Context, jd JobDescription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if jd.CreatedAt.IsZero() {
		jd.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, jd)
	return nil
}

// ListByUser walks insertion order backwards, which is newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]JobDescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]JobDescription, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (JobDescription, error) {
	if err := ctx.Err(); err != nil {
		return JobDescription{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, jd := range r.items {
		if jd.ID == id && jd.UserID == userID {
			return jd, nil
		}
	}
	return JobDescription{}, ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, jd := range r.items {
		if jd.ID == id && jd.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
