package resumes

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("resume not found")

// Repo persists scans. Every lookup is scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, scan Scan) error
	ListByUser(ctx context.Context, userID string) ([]Scan, error)
	Get(ctx context.Context, userID, id string) (Scan, error)
	Delete(ctx context.Context, userID, id string) error
	UpdateFile(ctx context.Context, userID, id, storageKey, originalFilename string) error
}
