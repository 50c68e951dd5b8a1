package resumes

import "time"

// Processing statuses. pending through ai_processing are transient; the
// remaining five are terminal.
const (
	StatusPending      = "pending"
	StatusProcessing   = "processing"
	StatusAIProcessing = "ai_processing"
	StatusCompleted    = "completed"
	StatusParseFailed  = "parse_failed"
	StatusAIFailed     = "ai_failed"
	StatusSaveFailed   = "save_failed"
	StatusQueueFailed  = "queue_failed"
)

// Resume represents an uploaded resume and its processing state.
type Resume struct {
	ID             string         `json:"id"`
	FileName       string         `json:"fileName"`
	FileSize       int64          `json:"fileSize"`
	FileType       string         `json:"fileType"`
	StorageKey     string         `json:"-"`
	Status         string         `json:"status"`
	RawText        string         `json:"-"`
	StructuredData map[string]any `json:"structuredData,omitempty"`
	AIEnhancements map[string]any `json:"aiEnhancements,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	switch status {
	case StatusCompleted, StatusParseFailed, StatusAIFailed, StatusSaveFailed, StatusQueueFailed:
		return true
	}
	return false
}
