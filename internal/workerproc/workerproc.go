package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/kartikey004/resume-parser-ai/internal/bootstrap"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/resumes"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingTarget indicates a message missing its resume or match id.
type ErrMissingTarget struct {
	Meta      MessageMeta
	Kind      string
	RequestID string
}

func (e ErrMissingTarget) Error() string { return "missing target id for kind " + e.Kind }

// ErrUnknownKind indicates a message with an unroutable kind.
type ErrUnknownKind struct {
	Meta MessageMeta
	Kind string
}

func (e ErrUnknownKind) Error() string { return "unknown message kind " + e.Kind }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}

	switch msg.Kind {
	case queue.KindExtract, queue.KindEnrich:
		if strings.TrimSpace(msg.ResumeID) == "" {
			return msg, meta, ErrMissingTarget{Meta: meta, Kind: msg.Kind, RequestID: msg.RequestID}
		}
	case queue.KindMatch:
		if strings.TrimSpace(msg.MatchID) == "" {
			return msg, meta, ErrMissingTarget{Meta: meta, Kind: msg.Kind, RequestID: msg.RequestID}
		}
	default:
		return msg, meta, ErrUnknownKind{Meta: meta, Kind: msg.Kind}
	}
	return msg, meta, nil
}

type parsedMessageKey struct{}

// WithParsedMessage stores a decoded message in the context for reuse.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessageFromContext(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

// HandleMessage parses, validates, and routes a message payload. Pipeline
// failures are recorded as terminal statuses by the services themselves, so
// a nil return means the message was consumed, not that the run succeeded.
func HandleMessage(ctx context.Context, app *bootstrap.App, body string) error {
	if app == nil || app.ResumesService == nil || app.MatchesService == nil {
		return errors.New("pipeline services not configured")
	}

	msg, ok := parsedMessageFromContext(ctx)
	if !ok {
		var err error
		msg, _, err = ParseMessage(body)
		if err != nil {
			return err
		}
	}

	ctxWithRequest := resumes.WithRequestID(ctx, msg.RequestID)
	switch msg.Kind {
	case queue.KindExtract:
		app.ResumesService.ProcessExtraction(ctxWithRequest, msg.ResumeID)
	case queue.KindEnrich:
		app.ResumesService.ProcessEnrichment(ctxWithRequest, msg.ResumeID)
	case queue.KindMatch:
		app.MatchesService.ProcessMatch(ctxWithRequest, msg.MatchID)
	default:
		return ErrUnknownKind{Meta: ComputeMeta(body), Kind: msg.Kind}
	}
	return nil
}
