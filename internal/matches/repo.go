package matches

import (
	"context"
	"time"
)

// Repo defines persistence operations for match jobs.
type Repo interface {
	Create(ctx context.Context, job MatchJob) error
	GetByID(ctx context.Context, matchID string) (MatchJob, error)
	// UpdateResult records the terminal status and the result payload.
	UpdateResult(ctx context.Context, matchID, status string, result map[string]any, completedAt time.Time) error
}
