package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(limit int, unlimited ...string) (*Service, *time.Time) {
	svc := NewService(limit, unlimited)
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestCheckAndConsumeUntilLimit(t *testing.T) {
	svc, _ := newTestService(2)
	ctx := context.Background()
	acct := Account{UserID: "u1", Email: "a@example.com"}

	for i := 0; i < 2; i++ {
		if _, err := svc.Check(ctx, acct); err != nil {
			t.Fatalf("Check %d: %v", i, err)
		}
		if _, err := svc.Consume(ctx, acct); err != nil {
			t.Fatalf("Consume %d: %v", i, err)
		}
	}

	u, err := svc.Check(ctx, acct)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if u.Remaining != 0 || u.Used != 2 {
		t.Fatalf("unexpected usage %+v", u)
	}
	if want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC); !u.ResetsAt.Equal(want) {
		t.Fatalf("expected resets_at %s, got %s", want, u.ResetsAt)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()
	acct := Account{UserID: "u1"}
	for i := 0; i < 3; i++ {
		if _, err := svc.Consume(ctx, acct); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}
	u, err := svc.Get(ctx, acct)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Used != 3 || u.Remaining != 0 {
		t.Fatalf("unexpected usage %+v", u)
	}
}

func TestMonthRolloverResetsCounter(t *testing.T) {
	svc, now := newTestService(5)
	ctx := context.Background()
	acct := Account{UserID: "u1"}
	if _, err := svc.Consume(ctx, acct); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	// Still March at the last second of the month.
	*now = time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	u, err := svc.Get(ctx, acct)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Used != 1 {
		t.Fatalf("expected used=1 before rollover, got %d", u.Used)
	}

	*now = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	u, err = svc.Get(ctx, acct)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Used != 0 || u.Remaining != 5 {
		t.Fatalf("expected reset after rollover, got %+v", u)
	}
	if !u.PeriodStart.Equal(*now) {
		t.Fatalf("expected period start %s, got %s", *now, u.PeriodStart)
	}
}

func TestRolloverAcrossYears(t *testing.T) {
	c := counter{Used: 4, PeriodStart: time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)}
	next, rolled := rollover(c, time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC))
	if !rolled || next.Used != 0 {
		t.Fatalf("expected same month next year to roll over, got %+v rolled=%v", next, rolled)
	}
	if got := nextMonth(time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)); !got.Equal(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next month %s", got)
	}
}

func TestUnlimitedAccounts(t *testing.T) {
	svc, _ := newTestService(1, " VIP@Example.com ")
	ctx := context.Background()
	acct := Account{UserID: "u1", Email: "vip@example.com"}

	for i := 0; i < 3; i++ {
		if _, err := svc.Check(ctx, acct); err != nil {
			t.Fatalf("Check: %v", err)
		}
		if _, err := svc.Consume(ctx, acct); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}
	u, err := svc.Get(ctx, acct)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !u.Unlimited || u.Remaining != UnlimitedRemaining || u.Used != 0 {
		t.Fatalf("unexpected unlimited usage %+v", u)
	}
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(2)
	ctx := context.Background()
	acct := Account{UserID: "u1"}
	_, _ = svc.Consume(ctx, acct)
	_, _ = svc.Consume(ctx, acct)

	u, err := svc.Reset(ctx, acct)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 || u.Remaining != 2 {
		t.Fatalf("unexpected usage after reset %+v", u)
	}
}
