package usage

import (
	"context"
	"database/sql"
	"time"
)

// PGStore keeps usage counters in the usage table.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Ensure(ctx context.Context, userID string, now time.Time) (c counter, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return counter{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c, err = s.lockAndEnsure(ctx, tx, userID, now)
	if err != nil {
		return counter{}, err
	}
	if err = tx.Commit(); err != nil {
		return counter{}, err
	}
	return c, nil
}

func (s *PGStore) Increment(ctx context.Context, userID string, now time.Time) (c counter, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return counter{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c, err = s.lockAndEnsure(ctx, tx, userID, now)
	if err != nil {
		return counter{}, err
	}
	c.Used++
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET used = $1 WHERE user_id = $2`, c.Used, userID); err != nil {
		return counter{}, err
	}
	if err = tx.Commit(); err != nil {
		return counter{}, err
	}
	return c, nil
}

func (s *PGStore) Reset(ctx context.Context, userID string, now time.Time) (counter, error) {
	c := counter{Used: 0, PeriodStart: now.UTC()}
	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO usage (user_id, used, period_start)
VALUES ($1, 0, $2)
ON CONFLICT (user_id) DO UPDATE SET used = 0, period_start = EXCLUDED.period_start`, userID, c.PeriodStart); err != nil {
		return counter{}, err
	}
	return c, nil
}

// lockAndEnsure creates the row if it is missing and then locks it, so
// concurrent first requests serialize on the same row instead of racing on
// the insert.
func (s *PGStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string, now time.Time) (counter, error) {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO usage (user_id, used, period_start) VALUES ($1, 0, $2)
ON CONFLICT (user_id) DO NOTHING`, userID, now.UTC()); err != nil {
		return counter{}, err
	}

	var c counter
	if err := tx.QueryRowContext(ctx, `
SELECT used, period_start FROM usage WHERE user_id = $1 FOR UPDATE`, userID).Scan(&c.Used, &c.PeriodStart); err != nil {
		return counter{}, err
	}

	next, rolled := rollover(c, now)
	if rolled {
		if _, err := tx.ExecContext(ctx, `
UPDATE usage SET used = $1, period_start = $2 WHERE user_id = $3`, next.Used, next.PeriodStart, userID); err != nil {
			return counter{}, err
		}
	}
	return next, nil
}
