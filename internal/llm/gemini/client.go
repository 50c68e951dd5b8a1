package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
)

// Client implements llm.Client against the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a Gemini-backed client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: c, model: strings.TrimSpace(model)}, nil
}

func (c *Client) GenerateJSON(ctx context.Context, task, prompt string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", task, err)
	}

	raw := stripCodeFences(resp.Text())
	telemetry.Info("llm.generate", map[string]any{
		"task":        task,
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"chars":       len(raw),
	})
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("gemini %s: invalid JSON in response", task)
	}
	return json.RawMessage(raw), nil
}

// stripCodeFences unwraps ```json ... ``` blocks. Gemini occasionally fences
// output even when asked for application/json.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
