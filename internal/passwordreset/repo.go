package passwordreset

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("reset token not found")

// Repo persists reset tokens.
type Repo interface {
	Create(ctx context.Context, token Token) error
	GetByToken(ctx context.Context, token string) (Token, error)
	// InvalidateForUser marks every unused token of the user as used.
	InvalidateForUser(ctx context.Context, userID string) error
	// Claim marks an unused token as used. It returns ErrNotFound when the
	// token is missing or another caller already claimed it.
	Claim(ctx context.Context, id string) error
}
