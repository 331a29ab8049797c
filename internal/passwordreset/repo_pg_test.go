package passwordreset

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoGetByToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	expires := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, user_id, token, expires_at, used, created_at").
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "used", "created_at"}).
			AddRow("r1", "u1", "tok", expires, false, expires.Add(-24*time.Hour)))

	got, err := repo.GetByToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != "r1" || got.UserID != "u1" || !got.ExpiresAt.Equal(expires) || got.Used {
		t.Fatalf("unexpected token %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByTokenNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM password_reset_tokens").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByToken(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoInvalidateForUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE password_reset_tokens SET used = TRUE WHERE user_id").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.InvalidateForUser(context.Background(), "u1"); err != nil {
		t.Fatalf("InvalidateForUser: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimOnlyUnusedTokens(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE password_reset_tokens SET used = TRUE WHERE id = \\$1 AND NOT used").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE password_reset_tokens SET used = TRUE WHERE id = \\$1 AND NOT used").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Claim(context.Background(), "r1"); err != nil {
		t.Fatalf("first Claim: %v", err)
	}
	if err := repo.Claim(context.Background(), "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second claim, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
