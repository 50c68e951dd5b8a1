package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// scriptedLLM answers GenerateJSON from canned responses keyed by task and
// records the prompt each task was given.
type scriptedLLM struct {
	responses map[string]string
	errs      map[string]error
	prompts   map[string]string
}

func (s *scriptedLLM) GenerateJSON(ctx context.Context, task, prompt string) (json.RawMessage, error) {
	_ = ctx
	if s.prompts != nil {
		s.prompts[task] = prompt
	}
	if err := s.errs[task]; err != nil {
		return nil, err
	}
	resp, ok := s.responses[task]
	if !ok {
		return nil, fmt.Errorf("no scripted response for task %s", task)
	}
	return json.RawMessage(resp), nil
}

func happyResponses() map[string]string {
	return map[string]string{
		"parse":             `{"personalInfo":{"name":{"full":"Jane Doe","first":"Jane","last":"Doe"}},"aiEnhancements":{"qualityScore":80,"completenessScore":70,"suggestions":["add a summary"]}}`,
		"biasReport":        `{"biasDetected":false,"findings":[]}`,
		"anonymizedData":    `{"personalInfo":{"name":{"full":"REDACTED"}}}`,
		"salaryEstimate":    `{"min":90000,"max":120000,"currency":"USD","comments":"mid-level range"}`,
		"careerProgression": `{"suggestedNextRoles":["Senior Engineer"],"improvementAreas":["leadership"],"comments":"steady growth"}`,
	}
}

func TestRunAllStagesSucceed(t *testing.T) {
	llmFake := &scriptedLLM{responses: happyResponses()}
	r := &Runner{LLM: llmFake}

	structured, enhancements, err := r.Run(context.Background(), "Jane Doe resume text")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, ok := structured["aiEnhancements"]; ok {
		t.Fatal("expected aiEnhancements stripped from structured record")
	}
	if _, ok := structured["personalInfo"]; !ok {
		t.Fatal("expected personalInfo in structured record")
	}

	for _, key := range []string{"biasReport", "anonymizedData", "salaryEstimate", "careerProgression"} {
		if enhancements[key] == nil {
			t.Fatalf("expected enhancement %s to be set", key)
		}
	}
	if enhancements["qualityScore"] == nil {
		t.Fatal("expected qualityScore carried over from extraction stage")
	}
}

func TestRunMandatoryStageFailure(t *testing.T) {
	llmFake := &scriptedLLM{
		responses: happyResponses(),
		errs:      map[string]error{"parse": errors.New("model unavailable")},
	}
	r := &Runner{LLM: llmFake}

	if _, _, err := r.Run(context.Background(), "text"); err == nil {
		t.Fatal("expected error when extraction stage fails")
	}
}

func TestRunParseSchemaViolation(t *testing.T) {
	responses := happyResponses()
	// name without the required full field
	responses["parse"] = `{"personalInfo":{"name":{"first":"Jane"}}}`
	r := &Runner{LLM: &scriptedLLM{responses: responses}}

	if _, _, err := r.Run(context.Background(), "text"); err == nil {
		t.Fatal("expected schema validation error for extraction stage")
	}
}

func TestRunOptionalStageFailureIsolated(t *testing.T) {
	llmFake := &scriptedLLM{
		responses: happyResponses(),
		errs:      map[string]error{"biasReport": errors.New("rate limited")},
	}
	r := &Runner{LLM: llmFake}

	_, enhancements, err := r.Run(context.Background(), "text")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	value, present := enhancements["biasReport"]
	if !present {
		t.Fatal("expected biasReport key present on failure")
	}
	if value != nil {
		t.Fatalf("expected biasReport nulled on failure, got %#v", value)
	}
	if enhancements["salaryEstimate"] == nil || enhancements["careerProgression"] == nil {
		t.Fatal("expected other stages unaffected by one failure")
	}
}

func TestRunAllOptionalStagesFail(t *testing.T) {
	llmFake := &scriptedLLM{
		responses: happyResponses(),
		errs: map[string]error{
			"biasReport":        errors.New("rate limited"),
			"anonymizedData":    errors.New("rate limited"),
			"salaryEstimate":    errors.New("rate limited"),
			"careerProgression": errors.New("rate limited"),
		},
	}
	r := &Runner{LLM: llmFake}

	structured, enhancements, err := r.Run(context.Background(), "text")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := structured["personalInfo"]; !ok {
		t.Fatal("expected mandatory parse result intact")
	}
	for _, key := range []string{"biasReport", "anonymizedData", "salaryEstimate", "careerProgression"} {
		value, present := enhancements[key]
		if !present {
			t.Fatalf("expected %s key present when its stage fails", key)
		}
		if value != nil {
			t.Fatalf("expected %s nulled, got %#v", key, value)
		}
	}
}

func TestRunAnonymizedRecordFeedsLaterStages(t *testing.T) {
	llmFake := &scriptedLLM{responses: happyResponses(), prompts: map[string]string{}}
	r := &Runner{LLM: llmFake}

	if _, _, err := r.Run(context.Background(), "text"); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, task := range []string{"salaryEstimate", "careerProgression"} {
		prompt := llmFake.prompts[task]
		if !strings.Contains(prompt, "REDACTED") {
			t.Fatalf("expected %s prompt built from anonymized record", task)
		}
		if strings.Contains(prompt, "Jane Doe") {
			t.Fatalf("expected %s prompt to omit the original name", task)
		}
	}
}

func TestRunAnonymizeFailureFallsBackToStructured(t *testing.T) {
	llmFake := &scriptedLLM{
		responses: happyResponses(),
		errs:      map[string]error{"anonymizedData": errors.New("boom")},
		prompts:   map[string]string{},
	}
	r := &Runner{LLM: llmFake}

	_, enhancements, err := r.Run(context.Background(), "text")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if enhancements["anonymizedData"] != nil {
		t.Fatal("expected anonymizedData nulled on failure")
	}
	if !strings.Contains(llmFake.prompts["salaryEstimate"], "Jane Doe") {
		t.Fatal("expected salary prompt built from original record when anonymization failed")
	}
}

func TestRunNilClient(t *testing.T) {
	r := &Runner{}
	if _, _, err := r.Run(context.Background(), "text"); err == nil {
		t.Fatal("expected error with no inference client")
	}
}
