// ABOUTME: Tests for schema validation and malformed-tool filtering

package acptools

import (
	"encoding/json"
	"testing"
)

func TestValidateSchema_NilDefaultsToObject(t *testing.T) {
	schema, err := ValidateSchema(nil)
	if err != nil {
		t.Fatalf("ValidateSchema(nil): %v", err)
	}
	if schema.Type != "object" {
		t.Errorf("expected default type object, got %q", schema.Type)
	}
}

func TestValidateSchema_MissingTypeDefaultsToObject(t *testing.T) {
	params := map[string]any{
		"properties": map[string]any{
			"path": map[string]any{"type": "string"},
		},
	}
	schema, err := ValidateSchema(params)
	if err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	if schema.Type != "object" {
		t.Errorf("expected defaulted type object, got %q", schema.Type)
	}
}

func TestValidateSchema_Unmarshalable(t *testing.T) {
	if _, err := ValidateSchema(func() {}); err == nil {
		t.Error("expected error for unmarshalable parameters")
	}
}

func TestFilterValid_DropsMalformed(t *testing.T) {
	defs := []ToolDefinition{
		{Name: "good", Parameters: map[string]any{"type": "object"}},
		{Name: "bad", Parameters: func() {}},
	}
	out := FilterValid(defs)
	if len(out) != 1 || out[0].Name != "good" {
		t.Errorf("expected only 'good' to survive, got %v", out)
	}
}

func TestContentBlock_RoundTrip(t *testing.T) {
	block := ContentBlock{Type: "text", Text: "hello"}
	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded ContentBlock
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Type != "text" || decoded.Text != "hello" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestCallToolResponse_JSON(t *testing.T) {
	resp := CallToolResponse{
		Success: true,
		Content: []ContentBlock{{Type: "text", Text: "done"}},
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded CallToolResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Success || len(decoded.Content) != 1 || decoded.Content[0].Text != "done" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
