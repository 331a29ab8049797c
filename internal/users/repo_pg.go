package users

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

const userColumns = `id, email, password_hash, first_name, last_name, mobile_number, company,
  job_title, location, bio, linkedin_url, github_url, website_url, profile_photo, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, password_hash, first_name, last_name, mobile_number, company,
  job_title, location, bio, linkedin_url, github_url, website_url, profile_photo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		db.NullString(user.FirstName),
		db.NullString(user.LastName),
		db.NullString(user.MobileNumber),
		db.NullString(user.Company),
		db.NullString(user.JobTitle),
		db.NullString(user.Location),
		db.NullString(user.Bio),
		db.NullString(user.LinkedInURL),
		db.NullString(user.GitHubURL),
		db.NullString(user.WebsiteURL),
		db.NullString(user.ProfilePhoto),
	)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) Update(ctx context.Context, user User) error {
	const query = `
UPDATE users SET
  email = $2,
  password_hash = $3,
  first_name = $4,
  last_name = $5,
  mobile_number = $6,
  company = $7,
  job_title = $8,
  location = $9,
  bio = $10,
  linkedin_url = $11,
  github_url = $12,
  website_url = $13,
  profile_photo = $14,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		db.NullString(user.FirstName),
		db.NullString(user.LastName),
		db.NullString(user.MobileNumber),
		db.NullString(user.Company),
		db.NullString(user.JobTitle),
		db.NullString(user.Location),
		db.NullString(user.Bio),
		db.NullString(user.LinkedInURL),
		db.NullString(user.GitHubURL),
		db.NullString(user.WebsiteURL),
		db.NullString(user.ProfilePhoto),
	)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var firstName, lastName, mobile, company, jobTitle, location, bio sql.NullString
	var linkedin, github, website, photo sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&firstName,
		&lastName,
		&mobile,
		&company,
		&jobTitle,
		&location,
		&bio,
		&linkedin,
		&github,
		&website,
		&photo,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.MobileNumber = mobile.String
	user.Company = company.String
	user.JobTitle = jobTitle.String
	user.Location = location.String
	user.Bio = bio.String
	user.LinkedInURL = linkedin.String
	user.GitHubURL = github.String
	user.WebsiteURL = website.String
	user.ProfilePhoto = photo.String
	return user, nil
}
