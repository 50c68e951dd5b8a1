package matches

import "time"

// Match job statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// MatchJob represents one resume-to-job matching run. JobDescription holds
// the requirements exactly as submitted; MatchResult holds either the match
// analysis or an {"error": ...} payload, never both meanings at once.
type MatchJob struct {
	ID             string         `json:"matchId"`
	ResumeID       string         `json:"resumeId"`
	Status         string         `json:"status"`
	JobDescription map[string]any `json:"jobDescription"`
	MatchResult    map[string]any `json:"matchResult,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}
