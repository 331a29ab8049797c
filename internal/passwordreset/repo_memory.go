package passwordreset

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu      sync.Mutex
	tokens  map[string]Token
	byValue map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tokens:  make(map[string]Token),
		byValue: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, token Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = token
	r.byValue[token.Token] = token.ID
	return nil
}

func (r *MemoryRepo) GetByToken(ctx context.Context, value string) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byValue[value]
	if !ok {
		return Token{}, ErrNotFound
	}
	return r.tokens[id], nil
}

func (r *MemoryRepo) InvalidateForUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID && !t.Used {
			t.Used = true
			r.tokens[id] = t
		}
	}
	return nil
}

func (r *MemoryRepo) Claim(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.Used {
		return ErrNotFound
	}
	t.Used = true
	r.tokens[id] = t
	return nil
}
