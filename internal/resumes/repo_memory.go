package resumes

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores resumes in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Resume)}
}

// Create stores the resume.
func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resume.ID] = resume
	return nil
}

// GetByID returns a resume by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

// UpdateStatus transitions a resume's status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, resumeID, status string) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.Status = status
	})
}

// UpdateTextAndStatus records extracted text alongside a status change.
func (r *MemoryRepo) UpdateTextAndStatus(ctx context.Context, resumeID, rawText, status string) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.RawText = rawText
		resume.Status = status
	})
}

// UpdateEnrichment stores pipeline output and terminal status.
func (r *MemoryRepo) UpdateEnrichment(ctx context.Context, resumeID string, structured, enhancements map[string]any, status string, completedAt time.Time) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.StructuredData = structured
		resume.AIEnhancements = enhancements
		resume.Status = status
		t := completedAt
		resume.CompletedAt = &t
	})
}

// UpdateStructuredData overwrites structured data after a manual edit,
// forcing a terminal status with its completion timestamp.
func (r *MemoryRepo) UpdateStructuredData(ctx context.Context, resumeID string, structured map[string]any, status string, completedAt time.Time) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.StructuredData = structured
		resume.Status = status
		t := completedAt
		resume.CompletedAt = &t
	})
}

// MarkFailed records a terminal failure status and its timestamp.
func (r *MemoryRepo) MarkFailed(ctx context.Context, resumeID, status string, completedAt time.Time) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.Status = status
		t := completedAt
		resume.CompletedAt = &t
	})
}

// Delete removes a resume.
func (r *MemoryRepo) Delete(ctx context.Context, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[resumeID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, resumeID)
	return nil
}

func (r *MemoryRepo) mutate(ctx context.Context, resumeID string, fn func(*Resume)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[resumeID]
	if !ok {
		return ErrNotFound
	}
	fn(&resume)
	r.byID[resumeID] = resume
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
