package llm

import (
	"strings"
	"testing"
)

func personSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": []string{"integer", "null"}},
		},
		"required": []string{"name"},
	}
}

func TestValidateAgainstSchemaAccepts(t *testing.T) {
	if err := ValidateAgainstSchema(personSchema(), []byte(`{"name":"Jane","age":null}`)); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestValidateAgainstSchemaRejectsMissingRequired(t *testing.T) {
	err := ValidateAgainstSchema(personSchema(), []byte(`{"age":30}`))
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	if !strings.Contains(err.Error(), "does not match schema") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAgainstSchemaRejectsWrongType(t *testing.T) {
	if err := ValidateAgainstSchema(personSchema(), []byte(`{"name":"Jane","age":"thirty"}`)); err == nil {
		t.Fatal("expected error for wrong type")
	}
}

func TestValidateAgainstSchemaRejectsMalformedJSON(t *testing.T) {
	if err := ValidateAgainstSchema(personSchema(), []byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
