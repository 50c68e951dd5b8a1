package llm

import (
	"context"
	"encoding/json"
)

// Client is the inference surface the pipeline depends on. Implementations
// must return syntactically valid JSON; schema conformance is checked by
// the caller against the task's schema.
type Client interface {
	// GenerateJSON runs one inference call and returns the model's JSON
	// output. task is a short stable label used for logging.
	GenerateJSON(ctx context.Context, task, prompt string) (json.RawMessage, error)
}
