package jobdescriptions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("job description not found")

// Repo persists job descriptions. Lookups are scoped to the owner.
type Repo interface {
	Create(ctx context.Context, jd JobDescription) error
	ListByUser(ctx context.Context, userID string) ([]JobDescription, error)
	Get(ctx context.Context, userID, id string) (JobDescription, error)
	Delete(ctx context.Context, userID, id string) error
}
