package matches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kartikey004/resume-parser-ai/internal/llm"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/resumes"
	"github.com/kartikey004/resume-parser-ai/internal/shared/metrics"
	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
)

// ResumeSource looks up completed resumes for matching.
type ResumeSource interface {
	Parsed(ctx context.Context, resumeID string) (resumes.Resume, error)
}

// Service runs the matching pipeline.
type Service struct {
	Repo    Repo
	Resumes ResumeSource
	LLM     llm.Client
	// Queue dispatches match runs to the worker; nil means direct goroutines.
	Queue queue.Client
}

// Create verifies the resume is ready, records a pending match job, and
// dispatches one matching run.
func (s *Service) Create(ctx context.Context, resumeID string, jobDescription map[string]any) (MatchJob, error) {
	if resumeID == "" || jobDescription == nil {
		return MatchJob{}, ErrInvalidInput
	}
	if title, _ := jobDescription["title"].(string); strings.TrimSpace(title) == "" {
		return MatchJob{}, fmt.Errorf("%w: jobDescription.title is required", ErrInvalidInput)
	}

	resume, err := s.Resumes.Parsed(ctx, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotCompleted) {
			return MatchJob{}, ErrResumeNotReady
		}
		if errors.Is(err, resumes.ErrNotFound) {
			return MatchJob{}, resumes.ErrNotFound
		}
		return MatchJob{}, err
	}
	if resume.StructuredData == nil {
		return MatchJob{}, ErrResumeNotReady
	}

	job := MatchJob{
		ID:             uuid.NewString(),
		ResumeID:       resumeID,
		Status:         StatusPending,
		JobDescription: jobDescription,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return MatchJob{}, err
	}

	if err := s.dispatch(ctx, job.ID); err != nil {
		s.failMatch(ctx, job.ID, fmt.Errorf("dispatch match: %w", err))
		job.Status = StatusFailed
		return job, err
	}
	return job, nil
}

// Get returns a match job by ID.
func (s *Service) Get(ctx context.Context, matchID string) (MatchJob, error) {
	if matchID == "" {
		return MatchJob{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, matchID)
}

// Result returns the match payload of a completed job.
func (s *Service) Result(ctx context.Context, matchID string) (MatchJob, error) {
	job, err := s.Get(ctx, matchID)
	if err != nil {
		return MatchJob{}, err
	}
	if job.Status != StatusCompleted {
		return job, ErrNotCompleted
	}
	if job.MatchResult == nil {
		return job, errors.New("match completed but no result data was found")
	}
	return job, nil
}

// ProcessMatch runs one matching analysis end to end. The run is
// all-or-nothing: any failure persists a failed status with an error
// payload and nothing else.
func (s *Service) ProcessMatch(ctx context.Context, matchID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failMatch(ctx, matchID, fmt.Errorf("panic: %v", r))
		}
	}()

	job, err := s.Repo.GetByID(ctx, matchID)
	if err != nil {
		telemetry.Error("match.lookup_failed", map[string]any{"match_id": matchID, "error": err.Error()})
		return
	}

	result, elapsed, err := s.runMatch(ctx, job)
	if err != nil {
		s.failMatch(ctx, matchID, err)
		return
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateResult(ctx, matchID, StatusCompleted, result, completedAt); err != nil {
		s.failMatch(ctx, matchID, fmt.Errorf("store match result: %w", err))
		return
	}
	metrics.IncMatchCompleted()
	metrics.ObserveMatchDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("match.status", map[string]any{
		"match_id":    matchID,
		"resume_id":   job.ResumeID,
		"status":      StatusCompleted,
		"duration_ms": elapsed.Milliseconds(),
	})
}

func (s *Service) runMatch(ctx context.Context, job MatchJob) (map[string]any, time.Duration, error) {
	if s.LLM == nil {
		return nil, 0, errors.New("inference client not configured")
	}

	resume, err := s.Resumes.Parsed(ctx, job.ResumeID)
	if err != nil {
		return nil, 0, fmt.Errorf("resume lookup: %w", err)
	}

	resumeView := make(map[string]any, len(resume.StructuredData)+2)
	for k, v := range resume.StructuredData {
		resumeView[k] = v
	}
	resumeView["id"] = resume.ID
	if resume.AIEnhancements != nil {
		resumeView["aiEnhancements"] = resume.AIEnhancements
	}

	schema := MatchResponseSchema()
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, 0, err
	}
	resumeJSON, err := json.Marshal(resumeView)
	if err != nil {
		return nil, 0, err
	}
	jobJSON, err := json.Marshal(job.JobDescription)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	raw, err := s.LLM.GenerateJSON(ctx, "match", buildMatchPrompt(string(schemaJSON), string(resumeJSON), string(jobJSON)))
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, elapsed, fmt.Errorf("decode match result: %w", err)
	}

	metadata, _ := result["metadata"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["processingTime"] = elapsed.Seconds()
	result["metadata"] = metadata
	result["matchId"] = job.ID
	result["resumeId"] = job.ResumeID
	result["jobTitle"] = job.JobDescription["title"]
	result["company"] = job.JobDescription["company"]

	finalJSON, err := json.Marshal(result)
	if err != nil {
		return nil, elapsed, err
	}
	if err := llm.ValidateAgainstSchema(schema, finalJSON); err != nil {
		return nil, elapsed, fmt.Errorf("match result: %w", err)
	}
	return result, elapsed, nil
}

func (s *Service) dispatch(ctx context.Context, matchID string) error {
	if s.Queue == nil {
		go s.ProcessMatch(context.Background(), matchID)
		return nil
	}
	return s.Queue.Send(ctx, queue.Message{
		Kind:       queue.KindMatch,
		MatchID:    matchID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	})
}

func (s *Service) failMatch(ctx context.Context, matchID string, cause error) {
	msg := sanitizeError(cause)
	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateResult(context.Background(), matchID, StatusFailed, map[string]any{"error": msg}, completedAt); err != nil {
		telemetry.Error("match.mark_failed", map[string]any{"match_id": matchID, "error": err.Error(), "cause": msg})
		return
	}
	metrics.IncMatchFailed()
	telemetry.Error("match.status", map[string]any{
		"match_id": matchID,
		"status":   StatusFailed,
		"error":    msg,
	})
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
