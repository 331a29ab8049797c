// Package passwordreset issues and redeems emailed password reset tokens.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-scanner/internal/shared/auth"
	"resume-scanner/internal/shared/telemetry"
	"resume-scanner/internal/users"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired reset token")
	ErrDelivery         = errors.New("failed to send password reset email")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password too short")
)

// Sender delivers reset links.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, token, name string) error
}

// Accounts is the slice of the user service needed here.
type Accounts interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	SetPassword(ctx context.Context, userID, next string) error
}

type Service struct {
	Repo     Repo
	Accounts Accounts
	Sender   Sender
	TTL      time.Duration
	Now      func() time.Time
}

func NewService(repo Repo, accounts Accounts, sender Sender, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{Repo: repo, Accounts: accounts, Sender: sender, TTL: ttl, Now: time.Now}
}

// RequestReset emails a fresh token to the account owner. Unknown addresses
// succeed silently so callers cannot tell which accounts exist.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		telemetry.Info("password_reset.unknown_email", nil)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.Repo.InvalidateForUser(ctx, user.ID); err != nil {
		return err
	}
	value, err := auth.RandomToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	now := s.now()
	token := Token{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: now.Add(s.TTL),
		CreatedAt: now,
	}
	if err := s.Repo.Create(ctx, token); err != nil {
		return err
	}

	if err := s.Sender.SendPasswordReset(ctx, user.Email, value, user.DisplayName()); err != nil {
		telemetry.Error("password_reset.delivery_failed", map[string]any{"user_id": user.ID, "error": err})
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	telemetry.Info("password_reset.requested", map[string]any{"user_id": user.ID})
	return nil
}

// Verify returns the token when it exists, is unused and has not expired.
func (s *Service) Verify(ctx context.Context, value string) (Token, error) {
	if value == "" {
		return Token{}, ErrInvalidToken
	}
	t, err := s.Repo.GetByToken(ctx, value)
	if errors.Is(err, ErrNotFound) {
		return Token{}, ErrInvalidToken
	}
	if err != nil {
		return Token{}, err
	}
	if !t.Valid(s.now()) {
		return Token{}, ErrInvalidToken
	}
	return t, nil
}

// Reset burns the token and then sets the new password. The token is claimed
// first so that only one of several concurrent requests can use it.
func (s *Service) Reset(ctx context.Context, value, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if len(next) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	t, err := s.Verify(ctx, value)
	if err != nil {
		return err
	}
	if err := s.Repo.Claim(ctx, t.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if err := s.Accounts.SetPassword(ctx, t.UserID, next); err != nil {
		telemetry.Warn("password_reset.token_burned", map[string]any{"user_id": t.UserID, "error": err})
		if errors.Is(err, users.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	telemetry.Info("password_reset.completed", map[string]any{"user_id": t.UserID})
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
