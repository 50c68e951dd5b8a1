package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kartikey004/resume-parser-ai/internal/llm"
	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
)

// Stage keys written into the aiEnhancements map.
const (
	keyBiasReport        = "biasReport"
	keyAnonymizedData    = "anonymizedData"
	keySalaryEstimate    = "salaryEstimate"
	keyCareerProgression = "careerProgression"
)

// Runner executes the enrichment stages against an inference client.
// Stage one (structured extraction) is mandatory; the remaining four are
// optional and isolated, a failed stage nulls its own key and nothing else.
type Runner struct {
	LLM llm.Client
}

type stageResult struct {
	key   string
	value any
	err   error
}

// Run executes the five stages sequentially over the extracted text.
// It returns the structured record and the enhancements map, or an error
// when the mandatory extraction stage fails.
func (r *Runner) Run(ctx context.Context, rawText string) (map[string]any, map[string]any, error) {
	if r.LLM == nil {
		return nil, nil, errors.New("inference client not configured")
	}

	parseSchema := ParseSchema()
	schemaJSON, err := json.Marshal(parseSchema)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal parse schema: %w", err)
	}

	raw, err := r.LLM.GenerateJSON(ctx, "parse", buildParsePrompt(string(schemaJSON), rawText))
	if err != nil {
		return nil, nil, fmt.Errorf("parse stage: %w", err)
	}
	if err := llm.ValidateAgainstSchema(parseSchema, raw); err != nil {
		return nil, nil, fmt.Errorf("parse stage: %w", err)
	}

	var structured map[string]any
	if err := json.Unmarshal(raw, &structured); err != nil {
		return nil, nil, fmt.Errorf("parse stage: decode: %w", err)
	}

	enhancements := map[string]any{}
	if block, ok := structured["aiEnhancements"].(map[string]any); ok {
		enhancements = block
	}
	delete(structured, "aiEnhancements")

	recordJSON, err := json.Marshal(structured)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal structured record: %w", err)
	}

	bias := r.runStage(ctx, keyBiasReport, BiasReportSchema(), func(stageSchema string) string {
		return buildBiasPrompt(stageSchema, rawText)
	})

	anonymize := r.runStage(ctx, keyAnonymizedData, parseSchema, func(stageSchema string) string {
		return buildAnonymizePrompt(stageSchema, string(recordJSON))
	})

	var anonymized map[string]any
	if anonymize.err == nil {
		anonymized, _ = anonymize.value.(map[string]any)
	}
	stageInput, err := json.Marshal(selectStageInput(structured, anonymized))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal stage input: %w", err)
	}

	salary := r.runStage(ctx, keySalaryEstimate, SalaryEstimateSchema(), func(stageSchema string) string {
		return buildSalaryPrompt(stageSchema, string(stageInput))
	})
	career := r.runStage(ctx, keyCareerProgression, CareerProgressionSchema(), func(stageSchema string) string {
		return buildCareerPrompt(stageSchema, string(stageInput))
	})

	for _, res := range []stageResult{bias, anonymize, salary, career} {
		if res.err != nil {
			telemetry.Warn("enrich.stage_failed", map[string]any{
				"stage": res.key,
				"error": res.err.Error(),
			})
			enhancements[res.key] = nil
			continue
		}
		enhancements[res.key] = res.value
	}

	return structured, enhancements, nil
}

func (r *Runner) runStage(ctx context.Context, key string, schema map[string]any, prompt func(stageSchema string) string) stageResult {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return stageResult{key: key, err: fmt.Errorf("marshal schema: %w", err)}
	}
	raw, err := r.LLM.GenerateJSON(ctx, key, prompt(string(schemaJSON)))
	if err != nil {
		return stageResult{key: key, err: err}
	}
	if err := llm.ValidateAgainstSchema(schema, raw); err != nil {
		return stageResult{key: key, err: err}
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return stageResult{key: key, err: err}
	}
	return stageResult{key: key, value: value}
}

// selectStageInput prefers the anonymized record for downstream stages so
// PII stays out of prompts whenever anonymization succeeded.
func selectStageInput(structured, anonymized map[string]any) map[string]any {
	if len(anonymized) > 0 {
		return anonymized
	}
	return structured
}
