package workerproc

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/kartikey004/resume-parser-ai/internal/bootstrap"
	"github.com/kartikey004/resume-parser-ai/internal/extract"
	"github.com/kartikey004/resume-parser-ai/internal/matches"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/resumes"
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

func setupApp(t *testing.T) (*bootstrap.App, *resumes.MemoryRepo) {
	t.Helper()
	repo := resumes.NewMemoryRepo()
	resumesSvc := &resumes.Service{
		Repo:      repo,
		Store:     local.New(t.TempDir()),
		Extractor: extract.New(extract.Config{}),
		Queue:     &recordingQueue{},
	}
	matchesSvc := &matches.Service{
		Repo:    matches.NewMemoryRepo(),
		Resumes: resumesSvc,
		Queue:   &recordingQueue{},
	}
	return &bootstrap.App{ResumesService: resumesSvc, MatchesService: matchesSvc}, repo
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var empty ErrEmptyBody
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageGarbage(t *testing.T) {
	_, meta, err := ParseMessage("{not json")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen != len("{not json") || meta.BodySHA == "" {
		t.Fatalf("expected meta populated, got %#v", meta)
	}
}

func TestParseMessageMissingResumeID(t *testing.T) {
	_, _, err := ParseMessage(`{"kind":"extract"}`)
	var missing ErrMissingTarget
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
	if missing.Kind != queue.KindExtract {
		t.Fatalf("expected kind extract, got %s", missing.Kind)
	}
}

func TestParseMessageMissingMatchID(t *testing.T) {
	_, _, err := ParseMessage(`{"kind":"match"}`)
	var missing ErrMissingTarget
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
}

func TestParseMessageUnknownKind(t *testing.T) {
	_, _, err := ParseMessage(`{"kind":"reindex","resumeId":"r-1"}`)
	var unknown ErrUnknownKind
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParseMessageValid(t *testing.T) {
	msg, _, err := ParseMessage(`{"kind":"enrich","resumeId":"r-1","requestId":"req-1","version":1}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Kind != queue.KindEnrich || msg.ResumeID != "r-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestHandleMessageRoutesExtract(t *testing.T) {
	app, repo := setupApp(t)

	resume, err := app.ResumesService.Upload(context.Background(), "resume.txt", bytes.NewReader([]byte("Jane Doe")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	body := `{"kind":"extract","resumeId":"` + resume.ID + `"}`
	if err := HandleMessage(context.Background(), app, body); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != resumes.StatusAIProcessing {
		t.Fatalf("expected ai_processing after extraction, got %s", got.Status)
	}
	if got.RawText == "" {
		t.Fatal("expected raw text stored")
	}
}

func TestHandleMessageUsesParsedMessageFromContext(t *testing.T) {
	app, repo := setupApp(t)

	resume, err := app.ResumesService.Upload(context.Background(), "resume.txt", bytes.NewReader([]byte("Jane Doe")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	ctx := WithParsedMessage(context.Background(), queue.Message{Kind: queue.KindExtract, ResumeID: resume.ID})
	if err := HandleMessage(ctx, app, "ignored"); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := repo.GetByID(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if got.Status != resumes.StatusAIProcessing {
		t.Fatalf("expected ai_processing, got %s", got.Status)
	}
}

func TestHandleMessageUnconfiguredApp(t *testing.T) {
	if err := HandleMessage(context.Background(), &bootstrap.App{}, `{"kind":"extract","resumeId":"r-1"}`); err == nil {
		t.Fatal("expected error with unconfigured services")
	}
}

func TestComputeMeta(t *testing.T) {
	meta := ComputeMeta("")
	if meta.BodyLen != 0 || meta.BodySHA != "" {
		t.Fatalf("expected zero meta for empty body, got %#v", meta)
	}
	meta = ComputeMeta("abc")
	if meta.BodyLen != 3 || len(meta.BodySHA) != 64 {
		t.Fatalf("unexpected meta %#v", meta)
	}
}
