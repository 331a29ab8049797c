package jobdescriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, jd JobDescription) error {
	const query = `
INSERT INTO job_descriptions (id, user_id, title, company, content, created_at)
VALUES ($1, $2, $3, $4, $5, now())`
	if _, err := r.DB.ExecContext(ctx, query, jd.ID, jd.UserID, jd.Title, jd.Company, jd.Content); err != nil {
		return fmt.Errorf("insert job description: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]JobDescription, error) {
	const query = `
SELECT id, user_id, title, company, content, created_at
FROM job_descriptions
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list job descriptions: %w", err)
	}
	defer rows.Close()

	out := make([]JobDescription, 0)
	for rows.Next() {
		var jd JobDescription
		if err := rows.Scan(&jd.ID, &jd.UserID, &jd.Title, &jd.Company, &jd.Content, &jd.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, jd)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (JobDescription, error) {
	const query = `
SELECT id, user_id, title, company, content, created_at
FROM job_descriptions
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var jd JobDescription
	err := r.DB.QueryRowContext(ctx, query, id, userID).
		Scan(&jd.ID, &jd.UserID, &jd.Title, &jd.Company, &jd.Content, &jd.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return JobDescription{}, ErrNotFound
	}
	if err != nil {
		return JobDescription{}, fmt.Errorf("get job description: %w", err)
	}
	return jd, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_descriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete job description: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
