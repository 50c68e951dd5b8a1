package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, resumeID string) (Resume, error)
	UpdateStatus(ctx context.Context, resumeID, status string) error
	// UpdateTextAndStatus records extracted text alongside a status change.
	UpdateTextAndStatus(ctx context.Context, resumeID, rawText, status string) error
	// UpdateEnrichment stores the pipeline output and marks the terminal status.
	UpdateEnrichment(ctx context.Context, resumeID string, structured, enhancements map[string]any, status string, completedAt time.Time) error
	// UpdateStructuredData overwrites structured data after a manual edit,
	// forcing a terminal status with its completion timestamp.
	UpdateStructuredData(ctx context.Context, resumeID string, structured map[string]any, status string, completedAt time.Time) error
	// MarkFailed records a terminal failure status and its timestamp.
	MarkFailed(ctx context.Context, resumeID, status string, completedAt time.Time) error
	Delete(ctx context.Context, resumeID string) error
}
