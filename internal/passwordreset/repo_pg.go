package passwordreset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, t Token) error {
	const query = `
INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
VALUES ($1, $2, $3, $4, FALSE, now())`
	if _, err := r.DB.ExecContext(ctx, query, t.ID, t.UserID, t.Token, t.ExpiresAt); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByToken(ctx context.Context, value string) (Token, error) {
	const query = `
SELECT id, user_id, token, expires_at, used, created_at
FROM password_reset_tokens
WHERE token = $1
LIMIT 1`
	var t Token
	err := r.DB.QueryRowContext(ctx, query, value).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, ErrNotFound
	}
	if err != nil {
		return Token{}, fmt.Errorf("select reset token: %w", err)
	}
	return t, nil
}

func (r *PGRepo) InvalidateForUser(ctx context.Context, userID string) error {
	const query = `UPDATE password_reset_tokens SET used = TRUE WHERE user_id = $1 AND NOT used`
	if _, err := r.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("invalidate reset tokens: %w", err)
	}
	return nil
}

func (r *PGRepo) Claim(ctx context.Context, id string) error {
	const query = `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND NOT used`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("claim reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim reset token: %w", err)
	}
	if n != 1 {
		return ErrNotFound
	}
	return nil
}
