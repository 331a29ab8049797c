package resumes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resume-scanner/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const scanColumns = `id, user_id, storage_key, original_filename, file_size, file_type, ats_score, feedback, analysis, created_at`

func (r *PGRepo) Create(ctx context.Context, s Scan) error {
	const query = `
INSERT INTO resume_scans (id, user_id, storage_key, original_filename, file_size, file_type, ats_score, feedback, analysis, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`
	var analysis any
	if len(s.Analysis) > 0 {
		analysis = []byte(s.Analysis)
	}
	_, err := r.DB.ExecContext(ctx, query,
		s.ID, s.UserID, s.StorageKey, s.OriginalFilename, s.FileSize, s.FileType, s.ATSScore,
		db.NullString(s.Feedback), analysis,
	)
	if err != nil {
		return fmt.Errorf("insert resume scan: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM resume_scans WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list resume scans: %w", err)
	}
	defer rows.Close()

	out := make([]Scan, 0)
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM resume_scans WHERE id = $1 AND user_id = $2 LIMIT 1`
	s, err := scanRow(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Scan{}, ErrNotFound
	}
	return s, err
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resume_scans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete resume scan: %w", err)
	}
	return requireRow(res)
}

func (r *PGRepo) UpdateFile(ctx context.Context, userID, id, storageKey, originalFilename string) error {
	const query = `
UPDATE resume_scans SET storage_key = $3, original_filename = $4
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID, storageKey, originalFilename)
	if err != nil {
		return fmt.Errorf("update resume scan: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (Scan, error) {
	var (
		s        Scan
		feedback sql.NullString
		analysis []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.StorageKey, &s.OriginalFilename, &s.FileSize, &s.FileType,
		&s.ATSScore, &feedback, &analysis, &s.CreatedAt)
	if err != nil {
		return Scan{}, err
	}
	s.Feedback = feedback.String
	if len(analysis) > 0 {
		s.Analysis = append([]byte(nil), analysis...)
	}
	return s, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
