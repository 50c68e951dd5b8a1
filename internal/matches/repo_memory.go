package matches

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores match jobs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]MatchJob
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]MatchJob)}
}

// Create stores the match job.
func (r *MemoryRepo) Create(ctx context.Context, job MatchJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[job.ID] = job
	return nil
}

// GetByID returns a match job by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, matchID string) (MatchJob, error) {
	if err := ctx.Err(); err != nil {
		return MatchJob{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.byID[matchID]
	if !ok {
		return MatchJob{}, ErrNotFound
	}
	return job, nil
}

// UpdateResult records the terminal status and the result payload.
func (r *MemoryRepo) UpdateResult(ctx context.Context, matchID, status string, result map[string]any, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[matchID]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	job.MatchResult = result
	t := completedAt
	job.CompletedAt = &t
	r.byID[matchID] = job
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
