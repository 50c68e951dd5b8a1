package resumes

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kartikey004/resume-parser-ai/internal/extract"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/shared/storage/object/local"
)

type recordingQueue struct {
	msgs []queue.Message
}

func (q *recordingQueue) Send(ctx context.Context, msg queue.Message) error {
	_ = ctx
	q.msgs = append(q.msgs, msg)
	return nil
}

type failingQueue struct{}

func (failingQueue) Send(ctx context.Context, msg queue.Message) error {
	_ = ctx
	_ = msg
	return errors.New("broker unreachable")
}

type staticEnricher struct {
	structured   map[string]any
	enhancements map[string]any
	err          error
}

func (s staticEnricher) Run(ctx context.Context, rawText string) (map[string]any, map[string]any, error) {
	_ = ctx
	_ = rawText
	return s.structured, s.enhancements, s.err
}

func setupService(t *testing.T, q queue.Client, enricher Enricher) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:      repo,
		Store:     local.New(t.TempDir()),
		Extractor: extract.New(extract.Config{}),
		Enricher:  enricher,
		Queue:     q,
	}
	return svc, repo
}

func uploadResume(t *testing.T, svc *Service, content string) Resume {
	t.Helper()
	resume, err := svc.Upload(context.Background(), "resume.txt", bytes.NewReader([]byte(content)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resume
}

func TestUploadCreatesPendingAndDispatchesExtraction(t *testing.T) {
	q := &recordingQueue{}
	svc, repo := setupService(t, q, nil)

	resume := uploadResume(t, svc, "Jane Doe\nSoftware Engineer")

	if resume.Status != StatusPending {
		t.Fatalf("expected pending, got %s", resume.Status)
	}
	if len(q.msgs) != 1 || q.msgs[0].Kind != queue.KindExtract || q.msgs[0].ResumeID != resume.ID {
		t.Fatalf("expected one extract message for %s, got %#v", resume.ID, q.msgs)
	}
	stored, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if stored.StorageKey == "" || stored.FileSize == 0 {
		t.Fatalf("expected stored file metadata, got %#v", stored)
	}
}

func TestUploadDispatchFailure(t *testing.T) {
	svc, repo := setupService(t, failingQueue{}, nil)

	resume, err := svc.Upload(context.Background(), "resume.txt", bytes.NewReader([]byte("text")))
	if err == nil {
		t.Fatal("expected error when dispatch fails")
	}
	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != StatusQueueFailed {
		t.Fatalf("expected queue_failed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at set on terminal failure")
	}
}

func TestUploadEmptyFileName(t *testing.T) {
	svc, _ := setupService(t, &recordingQueue{}, nil)
	if _, err := svc.Upload(context.Background(), "  ", bytes.NewReader([]byte("text"))); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipelineRunsToCompletion(t *testing.T) {
	q := &recordingQueue{}
	enricher := staticEnricher{
		structured:   map[string]any{"personalInfo": map[string]any{"name": map[string]any{"full": "Jane Doe"}}},
		enhancements: map[string]any{"qualityScore": 80},
	}
	svc, repo := setupService(t, q, enricher)

	resume := uploadResume(t, svc, "Jane Doe\nSoftware Engineer")

	svc.ProcessExtraction(context.Background(), resume.ID)
	mid, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if mid.Status != StatusAIProcessing {
		t.Fatalf("expected ai_processing after extraction, got %s", mid.Status)
	}
	if mid.RawText != "Jane Doe\nSoftware Engineer" {
		t.Fatalf("unexpected raw text %q", mid.RawText)
	}
	if len(q.msgs) != 2 || q.msgs[1].Kind != queue.KindEnrich {
		t.Fatalf("expected enrich message after extraction, got %#v", q.msgs)
	}

	svc.ProcessEnrichment(context.Background(), resume.ID)
	final, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if final.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
	if final.StructuredData == nil || final.AIEnhancements == nil {
		t.Fatal("expected structured data and enhancements persisted")
	}
	if final.CompletedAt == nil {
		t.Fatal("expected completed_at set")
	}
}

func TestExtractionEmptyDocument(t *testing.T) {
	q := &recordingQueue{}
	svc, repo := setupService(t, q, nil)

	resume := uploadResume(t, svc, "   ")
	svc.ProcessExtraction(context.Background(), resume.ID)

	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != StatusParseFailed {
		t.Fatalf("expected parse_failed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at set on terminal failure")
	}
	if len(q.msgs) != 1 {
		t.Fatalf("expected no enrich dispatch, got %#v", q.msgs)
	}
}

func TestEnrichmentWithoutInferenceClient(t *testing.T) {
	svc, repo := setupService(t, &recordingQueue{}, nil)

	resume := uploadResume(t, svc, "Jane Doe")
	svc.ProcessExtraction(context.Background(), resume.ID)
	svc.ProcessEnrichment(context.Background(), resume.ID)

	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != StatusAIFailed {
		t.Fatalf("expected ai_failed without inference client, got %s", got.Status)
	}
}

func TestEnrichmentFailure(t *testing.T) {
	svc, repo := setupService(t, &recordingQueue{}, staticEnricher{err: errors.New("model error")})

	resume := uploadResume(t, svc, "Jane Doe")
	svc.ProcessExtraction(context.Background(), resume.ID)
	svc.ProcessEnrichment(context.Background(), resume.ID)

	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != StatusAIFailed {
		t.Fatalf("expected ai_failed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at set on terminal failure")
	}
}

type enrichmentSaveFailRepo struct {
	*MemoryRepo
}

func (r enrichmentSaveFailRepo) UpdateEnrichment(ctx context.Context, resumeID string, structured, enhancements map[string]any, status string, completedAt time.Time) error {
	_ = ctx
	_ = resumeID
	_ = structured
	_ = enhancements
	_ = status
	_ = completedAt
	return errors.New("db down")
}

func TestEnrichmentSaveFailure(t *testing.T) {
	svc, repo := setupService(t, &recordingQueue{}, staticEnricher{structured: map[string]any{"a": "b"}})
	svc.Repo = enrichmentSaveFailRepo{MemoryRepo: repo}

	resume := uploadResume(t, svc, "Jane Doe")
	svc.ProcessExtraction(context.Background(), resume.ID)
	svc.ProcessEnrichment(context.Background(), resume.ID)

	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != StatusSaveFailed {
		t.Fatalf("expected save_failed, got %s", got.Status)
	}
}

func TestParsedRequiresCompleted(t *testing.T) {
	svc, _ := setupService(t, &recordingQueue{}, nil)

	resume := uploadResume(t, svc, "Jane Doe")
	if _, err := svc.Parsed(context.Background(), resume.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted while pending, got %v", err)
	}
}

func TestManualUpdateForcesCompleted(t *testing.T) {
	svc, repo := setupService(t, &recordingQueue{}, nil)

	resume := uploadResume(t, svc, "Jane Doe")
	updated, err := svc.ManualUpdate(context.Background(), resume.ID, map[string]any{"summary": map[string]any{"text": "edited"}})
	if err != nil {
		t.Fatalf("manual update: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("expected completed after manual update, got %s", updated.Status)
	}
	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.StructuredData == nil {
		t.Fatal("expected structured data persisted")
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at set on manual update")
	}
}

func TestDeleteRemovesRecordAndBlob(t *testing.T) {
	svc, repo := setupService(t, &recordingQueue{}, nil)

	resume := uploadResume(t, svc, "Jane Doe")
	stored, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}

	if err := svc.Delete(context.Background(), resume.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), resume.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Store.Open(context.Background(), stored.StorageKey); err == nil {
		t.Fatal("expected stored file removed")
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusParseFailed, StatusAIFailed, StatusSaveFailed, StatusQueueFailed} {
		if !Terminal(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []string{StatusPending, StatusProcessing, StatusAIProcessing} {
		if Terminal(status) {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}
