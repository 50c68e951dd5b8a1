package enrich

// JSON Schemas the model output is validated against. Each prompt embeds
// its schema verbatim; validation happens again after the call, so a
// response that merely looks like JSON cannot reach the database.

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

func nullableObject(props map[string]any, required ...string) map[string]any {
	out := object(props, required...)
	out["type"] = []string{"object", "null"}
	return out
}

// ParseSchema describes the complete structured record extracted from a
// resume, including the aiEnhancements block the optional stages fill in.
func ParseSchema() map[string]any {
	name := nullableObject(map[string]any{
		"first": nullable("string"),
		"last":  nullable("string"),
		"full":  typ("string"),
	}, "full")
	address := nullableObject(map[string]any{
		"street":  nullable("string"),
		"city":    nullable("string"),
		"state":   nullable("string"),
		"zipCode": nullable("string"),
		"country": nullable("string"),
	})
	contact := nullableObject(map[string]any{
		"email":    nullable("string"),
		"phone":    nullable("string"),
		"address":  address,
		"linkedin": nullable("string"),
		"website":  nullable("string"),
	})
	experience := object(map[string]any{
		"title":        typ("string"),
		"company":      typ("string"),
		"location":     nullable("string"),
		"start_date":   nullable("string"),
		"end_date":     nullable("string"),
		"current":      nullable("boolean"),
		"duration":     nullable("string"),
		"description":  nullable("string"),
		"achievements": arrayOf(typ("string")),
		"technologies": arrayOf(typ("string")),
	}, "title", "company")
	education := object(map[string]any{
		"degree":          typ("string"),
		"field":           nullable("string"),
		"institution":     typ("string"),
		"location":        nullable("string"),
		"graduation_date": nullable("string"),
		"gpa":             nullable("number"),
		"honors":          arrayOf(typ("string")),
	}, "degree", "institution")
	skills := nullableObject(map[string]any{
		"technical": arrayOf(object(map[string]any{
			"category": typ("string"),
			"items":    arrayOf(typ("string")),
		}, "category")),
		"soft": arrayOf(typ("string")),
		"languages": arrayOf(object(map[string]any{
			"language":    typ("string"),
			"proficiency": nullable("string"),
		}, "language")),
	})
	certification := object(map[string]any{
		"name":         typ("string"),
		"issuer":       nullable("string"),
		"issueDate":    nullable("string"),
		"expiryDate":   nullable("string"),
		"credentialId": nullable("string"),
	}, "name")
	enhancements := nullableObject(map[string]any{
		"qualityScore":      nullable("integer"),
		"completenessScore": nullable("integer"),
		"suggestions":       arrayOf(typ("string")),
		"industryFit":       nullableObject(map[string]any{}),
	})

	return object(map[string]any{
		"personalInfo": nullableObject(map[string]any{
			"name":    name,
			"contact": contact,
		}),
		"summary": nullableObject(map[string]any{
			"text":          nullable("string"),
			"careerLevel":   nullable("string"),
			"industryFocus": nullable("string"),
		}),
		"experience":     arrayOf(experience),
		"education":      arrayOf(education),
		"skills":         skills,
		"certifications": arrayOf(certification),
		"aiEnhancements": enhancements,
	})
}

// BiasReportSchema describes the bias-detection stage output.
func BiasReportSchema() map[string]any {
	return object(map[string]any{
		"biasDetected": typ("boolean"),
		"findings": arrayOf(object(map[string]any{
			"category":   typ("string"),
			"finding":    typ("string"),
			"suggestion": typ("string"),
		}, "category", "finding", "suggestion")),
	}, "biasDetected", "findings")
}

// SalaryEstimateSchema describes the salary-estimation stage output.
func SalaryEstimateSchema() map[string]any {
	return object(map[string]any{
		"min":      nullable("integer"),
		"max":      nullable("integer"),
		"currency": typ("string"),
		"comments": typ("string"),
	}, "currency", "comments")
}

// CareerProgressionSchema describes the career-progression stage output.
func CareerProgressionSchema() map[string]any {
	return object(map[string]any{
		"suggestedNextRoles": arrayOf(typ("string")),
		"improvementAreas":   arrayOf(typ("string")),
		"comments":           typ("string"),
	}, "suggestedNextRoles", "improvementAreas", "comments")
}
