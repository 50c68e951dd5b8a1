package resumes

import "time"

// StatusResponse is the lightweight polling view of a resume.
type StatusResponse struct {
	ResumeID    string     `json:"resumeId"`
	FileName    string     `json:"fileName"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ResumeResponse is the outward-facing representation of a parsed resume.
type ResumeResponse struct {
	ResumeID       string         `json:"resumeId"`
	FileName       string         `json:"fileName"`
	FileSize       int64          `json:"fileSize"`
	FileType       string         `json:"fileType"`
	Status         string         `json:"status"`
	StructuredData map[string]any `json:"structuredData,omitempty"`
	AIEnhancements map[string]any `json:"aiEnhancements,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

func toStatusResponse(resume Resume) StatusResponse {
	return StatusResponse{
		ResumeID:    resume.ID,
		FileName:    resume.FileName,
		Status:      resume.Status,
		CreatedAt:   resume.CreatedAt,
		CompletedAt: resume.CompletedAt,
	}
}

func toResponse(resume Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:       resume.ID,
		FileName:       resume.FileName,
		FileSize:       resume.FileSize,
		FileType:       resume.FileType,
		Status:         resume.Status,
		StructuredData: resume.StructuredData,
		AIEnhancements: resume.AIEnhancements,
		CreatedAt:      resume.CreatedAt,
		CompletedAt:    resume.CompletedAt,
	}
}
