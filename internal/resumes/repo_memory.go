package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	scans map[string]Scan
	seq   map[string]int
	next  int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		scans: make(map[string]Scan),
		seq:   make(map[string]int),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, scan Scan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now().UTC()
	}
	r.scans[scan.ID] = scan
	r.next++
	r.seq[scan.ID] = r.next
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Scan, 0)
	for _, s := range r.scans {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Scan, error) {
	if err := ctx.Err(); err != nil {
		return Scan{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scans[id]
	if !ok || s.UserID != userID {
		return Scan{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scans[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	delete(r.scans, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryRepo) UpdateFile(ctx context.Context, userID, id, storageKey, originalFilename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scans[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	s.StorageKey = storageKey
	s.OriginalFilename = originalFilename
	r.scans[id] = s
	return nil
}
