// Package jobdescriptions manages the job postings a user saves.
package jobdescriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("title, company and content are required")

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]JobDescription, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Create trims and stores a job description. All three fields are required.
func (s *Service) Create(ctx context.Context, userID, title, company, content string) (JobDescription, error) {
	jd := JobDescription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Company:   strings.TrimSpace(company),
		Content:   strings.TrimSpace(content),
		CreatedAt: s.Now().UTC(),
	}
	if jd.Title == "" || jd.Company == "" || jd.Content == "" {
		return JobDescription{}, ErrInvalidInput
	}
	if err := s.Repo.Create(ctx, jd); err != nil {
		return JobDescription{}, err
	}
	return jd, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (JobDescription, error) {
	if strings.TrimSpace(id) == "" {
		return JobDescription{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}
