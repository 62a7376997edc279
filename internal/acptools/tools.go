// ABOUTME: ToolDefinition/CallToolResponse shared between the delegate contract (§6.3) and expose.go
// ABOUTME: Validates tool parameter schemas with github.com/google/jsonschema-go before they hit the wire

package acptools

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/nullstream/acp-go/internal/acplog"
)

// ToolDefinition describes one tool a delegate exposes to the agent via
// tools/list. Parameters is JSON-Schema-shaped (object, properties, etc.) —
// callers normally build it from a Go struct tag set or a literal map.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// ContentBlock is one element of a CallToolResponse's Content slice. Only
// the "text" kind is populated by this SDK; other kinds round-trip opaquely
// through Raw when a delegate needs to emit something richer.
type ContentBlock struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

func (c ContentBlock) MarshalJSON() ([]byte, error) {
	if c.Raw != nil {
		return c.Raw, nil
	}
	type alias ContentBlock
	return json.Marshal(alias(c))
}

func (c *ContentBlock) UnmarshalJSON(data []byte) error {
	type alias ContentBlock
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = ContentBlock(a)
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// CallToolResponse is a delegate's answer to tools/call.
type CallToolResponse struct {
	Success bool           `json:"success"`
	Content []ContentBlock `json:"content,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ValidateSchema checks that params (typically a ToolDefinition.Parameters
// value, or the raw "parameters"/"inputSchema" field off the wire) round-trips
// through jsonschema.Schema. A nil or empty schema defaults to the permissive
// {"type":"object"} shape, matching the teacher pack's MCP client behavior
// when an upstream server omits or under-specifies a tool's input schema.
func ValidateSchema(params any) (*jsonschema.Schema, error) {
	if params == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("acptools: marshaling schema: %w", err)
	}

	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("acptools: decoding schema: %w", err)
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema, nil
}

// FilterValid validates every definition's Parameters and drops the ones
// that fail, logging each dropped entry rather than surfacing a wire error
// (§4.D.1 — a single malformed tool descriptor must not break tools/list
// for every other tool).
func FilterValid(defs []ToolDefinition) []ToolDefinition {
	out := make([]ToolDefinition, 0, len(defs))
	for _, d := range defs {
		if _, err := ValidateSchema(d.Parameters); err != nil {
			acplog.Warn("acptools: dropping tool %q with malformed schema: %v", d.Name, err)
			continue
		}
		out = append(out, d)
	}
	return out
}
