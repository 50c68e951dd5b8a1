package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kartikey004/resume-parser-ai/internal/extract"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/shared/metrics"
	"github.com/kartikey004/resume-parser-ai/internal/shared/storage/object"
	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
)

// Enricher runs the enrichment stages over extracted text.
type Enricher interface {
	Run(ctx context.Context, rawText string) (structured, enhancements map[string]any, err error)
}

// Service orchestrates the resume processing pipeline.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Extractor *extract.Extractor
	Enricher  Enricher
	// Queue dispatches pipeline runs to the worker. When nil, runs are
	// dispatched as direct goroutines (dev mode).
	Queue queue.Client
}

// Upload stores the file, records the resume, and kicks off extraction.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Resume, error) {
	if strings.TrimSpace(fileName) == "" {
		return Resume{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, fileName, r)
	if err != nil {
		return Resume{}, fmt.Errorf("save upload: %w", err)
	}

	resume := Resume{
		ID:         uuid.NewString(),
		FileName:   fileName,
		FileSize:   size,
		FileType:   mimeType,
		StorageKey: storageKey,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		// Best effort; the record is the source of truth, not the blob.
		_ = s.Store.Delete(ctx, storageKey)
		return Resume{}, err
	}

	if err := s.dispatch(ctx, queue.Message{Kind: queue.KindExtract, ResumeID: resume.ID}, func(bg context.Context) {
		s.ProcessExtraction(bg, resume.ID)
	}); err != nil {
		s.fail(ctx, resume.ID, resume.Status, StatusQueueFailed, err)
		resume.Status = StatusQueueFailed
		return resume, err
	}
	metrics.IncResumeUploaded()
	s.logTransition(ctx, resume.ID, "", StatusPending, nil)
	return resume, nil
}

// ProcessExtraction runs the extraction cascade for one resume.
func (s *Service) ProcessExtraction(ctx context.Context, resumeID string) {
	defer s.recoverPanic(ctx, resumeID)

	resume, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		telemetry.Error("resume.lookup_failed", map[string]any{"resume_id": resumeID, "error": err.Error()})
		return
	}

	if err := s.Repo.UpdateStatus(ctx, resumeID, StatusProcessing); err != nil {
		s.fail(ctx, resumeID, resume.Status, StatusSaveFailed, fmt.Errorf("set processing: %w", err))
		return
	}
	s.logTransition(ctx, resumeID, resume.Status, StatusProcessing, nil)

	data, err := s.loadObject(ctx, resume.StorageKey)
	if err != nil {
		s.fail(ctx, resumeID, StatusProcessing, StatusParseFailed, fmt.Errorf("load stored file: %w", err))
		return
	}

	text := s.Extractor.Extract(ctx, data, resume.FileType, resume.FileName)
	if strings.TrimSpace(text) == "" {
		s.fail(ctx, resumeID, StatusProcessing, StatusParseFailed, ErrEmptyDocument)
		return
	}

	if err := s.Repo.UpdateTextAndStatus(ctx, resumeID, text, StatusAIProcessing); err != nil {
		s.fail(ctx, resumeID, StatusProcessing, StatusSaveFailed, fmt.Errorf("store extracted text: %w", err))
		return
	}
	s.logTransition(ctx, resumeID, StatusProcessing, StatusAIProcessing, nil)

	if err := s.dispatch(ctx, queue.Message{Kind: queue.KindEnrich, ResumeID: resumeID}, func(bg context.Context) {
		s.ProcessEnrichment(bg, resumeID)
	}); err != nil {
		s.fail(ctx, resumeID, StatusAIProcessing, StatusAIFailed, fmt.Errorf("dispatch enrichment: %w", err))
	}
}

// ProcessEnrichment runs the enrichment stages for one resume.
func (s *Service) ProcessEnrichment(ctx context.Context, resumeID string) {
	defer s.recoverPanic(ctx, resumeID)

	resume, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		telemetry.Error("resume.lookup_failed", map[string]any{"resume_id": resumeID, "error": err.Error()})
		return
	}
	if strings.TrimSpace(resume.RawText) == "" {
		s.fail(ctx, resumeID, resume.Status, StatusParseFailed, ErrEmptyDocument)
		return
	}
	if s.Enricher == nil {
		s.fail(ctx, resumeID, resume.Status, StatusAIFailed, errors.New("inference client not configured"))
		return
	}

	started := time.Now()
	structured, enhancements, err := s.Enricher.Run(ctx, resume.RawText)
	metrics.ObserveEnrichmentDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		s.fail(ctx, resumeID, resume.Status, StatusAIFailed, err)
		return
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateEnrichment(ctx, resumeID, structured, enhancements, StatusCompleted, completedAt); err != nil {
		s.fail(ctx, resumeID, resume.Status, StatusSaveFailed, fmt.Errorf("store enrichment: %w", err))
		return
	}
	metrics.IncResumeCompleted()
	s.logTransition(ctx, resumeID, resume.Status, StatusCompleted, nil)
}

// Get returns a resume by ID.
func (s *Service) Get(ctx context.Context, resumeID string) (Resume, error) {
	if resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, resumeID)
}

// Parsed returns a completed resume, or ErrNotCompleted while the pipeline
// is still running or ended in a failure status.
func (s *Service) Parsed(ctx context.Context, resumeID string) (Resume, error) {
	resume, err := s.Get(ctx, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if resume.Status != StatusCompleted {
		return resume, ErrNotCompleted
	}
	return resume, nil
}

// Analytics returns the enhancements block of a completed resume.
func (s *Service) Analytics(ctx context.Context, resumeID string) (map[string]any, error) {
	resume, err := s.Parsed(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	return resume.AIEnhancements, nil
}

// ManualUpdate overwrites the structured data and forces completed status.
func (s *Service) ManualUpdate(ctx context.Context, resumeID string, structured map[string]any) (Resume, error) {
	if resumeID == "" || structured == nil {
		return Resume{}, ErrInvalidInput
	}
	if err := s.Repo.UpdateStructuredData(ctx, resumeID, structured, StatusCompleted, time.Now().UTC()); err != nil {
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, resumeID)
}

// Delete removes the record and its stored file.
func (s *Service) Delete(ctx context.Context, resumeID string) error {
	resume, err := s.Get(ctx, resumeID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, resumeID); err != nil {
		return err
	}
	if resume.StorageKey != "" {
		if err := s.Store.Delete(ctx, resume.StorageKey); err != nil {
			telemetry.Warn("resume.delete_blob_failed", map[string]any{"resume_id": resumeID, "error": err.Error()})
		}
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, msg queue.Message, direct func(context.Context)) error {
	if s.Queue == nil {
		go direct(backgroundWithRequestID(ctx))
		return nil
	}
	msg.RequestID = requestIDFromContext(ctx)
	msg.EnqueuedAt = time.Now().UTC().Format(time.RFC3339)
	msg.Version = 1
	return s.Queue.Send(ctx, msg)
}

func (s *Service) loadObject(ctx context.Context, storageKey string) ([]byte, error) {
	body, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (s *Service) fail(ctx context.Context, resumeID, fromStatus, toStatus string, cause error) {
	completedAt := time.Now().UTC()
	if err := s.Repo.MarkFailed(context.Background(), resumeID, toStatus, completedAt); err != nil {
		telemetry.Error("resume.mark_failed", map[string]any{"resume_id": resumeID, "status": toStatus, "error": err.Error(), "cause": cause.Error()})
		return
	}
	metrics.IncResumeFailed()
	s.logTransition(ctx, resumeID, fromStatus, toStatus, cause)
}

func (s *Service) logTransition(ctx context.Context, resumeID, from, to string, cause error) {
	fields := map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"resume_id":         resumeID,
		"status":            to,
		"status_transition": from + "->" + to,
	}
	if cause != nil {
		fields["error"] = sanitizeError(cause)
		telemetry.Error("resume.status", fields)
		return
	}
	telemetry.Info("resume.status", fields)
}

func (s *Service) recoverPanic(ctx context.Context, resumeID string) {
	if r := recover(); r != nil {
		s.fail(ctx, resumeID, "", StatusAIFailed, fmt.Errorf("panic: %v", r))
	}
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
