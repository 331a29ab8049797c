package usage

import (
	"context"
	"strings"
	"time"

	"resume-scanner/internal/shared/metrics"
	"resume-scanner/internal/shared/telemetry"
)

type store interface {
	Ensure(ctx context.Context, userID string, now time.Time) (counter, error)
	Increment(ctx context.Context, userID string, now time.Time) (counter, error)
	Reset(ctx context.Context, userID string, now time.Time) (counter, error)
}

// Service enforces the monthly scan quota.
type Service struct {
	store     store
	limit     int
	unlimited map[string]bool
	now       func() time.Time
}

// NewService constructs a Service with an in-memory store.
func NewService(limit int, unlimitedEmails []string) *Service {
	return newService(newMemoryStore(), limit, unlimitedEmails)
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore *PGStore, limit int, unlimitedEmails []string) *Service {
	return newService(pgStore, limit, unlimitedEmails)
}

func newService(st store, limit int, unlimitedEmails []string) *Service {
	unlimited := make(map[string]bool, len(unlimitedEmails))
	for _, email := range unlimitedEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			unlimited[email] = true
		}
	}
	return &Service{store: st, limit: limit, unlimited: unlimited, now: time.Now}
}

// IsUnlimited reports whether the account bypasses the quota.
func (s *Service) IsUnlimited(a Account) bool {
	return s.unlimited[strings.ToLower(strings.TrimSpace(a.Email))]
}

// Get returns the current usage, rolling the period over when a new month has started.
func (s *Service) Get(ctx context.Context, a Account) (Usage, error) {
	now := s.now()
	c, err := s.store.Ensure(ctx, a.UserID, now)
	if err != nil {
		return Usage{}, err
	}
	return s.snapshot(a, c), nil
}

// Check returns ErrLimitReached when no scans remain.
func (s *Service) Check(ctx context.Context, a Account) (Usage, error) {
	u, err := s.Get(ctx, a)
	if err != nil {
		return Usage{}, err
	}
	if u.Remaining <= 0 {
		return u, ErrLimitReached
	}
	return u, nil
}

// Consume records one scan. Unlimited accounts are never charged.
func (s *Service) Consume(ctx context.Context, a Account) (Usage, error) {
	if s.IsUnlimited(a) {
		return s.Get(ctx, a)
	}
	c, err := s.store.Increment(ctx, a.UserID, s.now())
	if err != nil {
		return Usage{}, err
	}
	u := s.snapshot(a, c)
	metrics.IncQuotaConsumed()
	telemetry.Info("quota.consumed", map[string]any{
		"user_id":   a.UserID,
		"used":      u.Used,
		"remaining": u.Remaining,
	})
	return u, nil
}

// Reset zeroes the counter and starts a new period.
func (s *Service) Reset(ctx context.Context, a Account) (Usage, error) {
	c, err := s.store.Reset(ctx, a.UserID, s.now())
	if err != nil {
		return Usage{}, err
	}
	return s.snapshot(a, c), nil
}

func (s *Service) snapshot(a Account, c counter) Usage {
	u := Usage{
		Limit:       s.limit,
		Used:        c.Used,
		PeriodStart: c.PeriodStart.UTC(),
		ResetsAt:    nextMonth(c.PeriodStart),
	}
	if s.IsUnlimited(a) {
		u.Unlimited = true
		u.Remaining = UnlimitedRemaining
		return u
	}
	u.Remaining = s.limit - c.Used
	if u.Remaining < 0 {
		u.Remaining = 0
	}
	return u
}
