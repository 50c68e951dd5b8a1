package matches

func typ(t string) map[string]any { return map[string]any{"type": t} }

func nullable(t string) map[string]any { return map[string]any{"type": []string{t, "null"}} }

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func object(props map[string]any, required ...string) map[string]any {
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// MatchResponseSchema describes the full match analysis the model must
// produce. processingTime is injected by the service before validation.
func MatchResponseSchema() map[string]any {
	category := object(map[string]any{
		"score":   typ("integer"),
		"weight":  typ("integer"),
		"details": typ("object"),
	}, "score", "weight", "details")
	gap := object(map[string]any{
		"category":   typ("string"),
		"missing":    map[string]any{},
		"impact":     typ("string"),
		"suggestion": typ("string"),
	}, "category", "missing", "impact", "suggestion")

	matchingResults := object(map[string]any{
		"overallScore":   typ("integer"),
		"confidence":     typ("number"),
		"recommendation": typ("string"),
		"categoryScores": object(map[string]any{
			"skillsMatch":     category,
			"experienceMatch": category,
			"educationMatch":  category,
			"roleAlignment":   category,
			"locationMatch":   category,
		}, "skillsMatch", "experienceMatch", "educationMatch", "roleAlignment", "locationMatch"),
		"strengthAreas": arrayOf(typ("string")),
		"gapAnalysis": object(map[string]any{
			"criticalGaps":     arrayOf(gap),
			"improvementAreas": arrayOf(gap),
		}, "criticalGaps", "improvementAreas"),
		"salaryAlignment": object(map[string]any{
			"candidateExpectation": typ("string"),
			"jobSalaryRange":       typ("string"),
			"marketRate":           nullable("string"),
			"alignment":            typ("string"),
		}, "candidateExpectation", "jobSalaryRange", "alignment"),
		"competitiveAdvantages": arrayOf(typ("string")),
	}, "overallScore", "confidence", "recommendation", "categoryScores", "gapAnalysis", "salaryAlignment")

	return object(map[string]any{
		"matchId":  typ("string"),
		"resumeId": typ("string"),
		"jobTitle": typ("string"),
		"company":  nullable("string"),
		"matchingResults": matchingResults,
		"explanation": object(map[string]any{
			"summary":         typ("string"),
			"keyFactors":      arrayOf(typ("string")),
			"recommendations": arrayOf(typ("string")),
		}, "summary", "keyFactors", "recommendations"),
		"metadata": object(map[string]any{
			"matchedAt":         typ("string"),
			"processingTime":    typ("number"),
			"algorithm":         typ("string"),
			"confidenceFactors": nullable("object"),
		}, "matchedAt", "processingTime", "algorithm"),
	}, "matchId", "resumeId", "jobTitle", "matchingResults", "explanation", "metadata")
}
