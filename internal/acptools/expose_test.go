// ABOUTME: Tests for the stdio MCP-style exposure server

package acptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

type fakeProvider struct {
	tools []ToolDefinition
	calls map[string]CallToolResponse
}

func (f *fakeProvider) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	return f.tools, nil
}

func (f *fakeProvider) CallTool(ctx context.Context, name string, arguments json.RawMessage) (CallToolResponse, error) {
	return f.calls[name], nil
}

func TestServer_ToolsList(t *testing.T) {
	provider := &fakeProvider{
		tools: []ToolDefinition{
			{Name: "echo", Parameters: map[string]any{"type": "object"}},
			{Name: "bad", Parameters: func() {}},
		},
	}
	server := NewServer(provider, "nested-agent")

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}` + "\n")
	var out strings.Builder

	if err := server.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var resp struct {
		Result struct {
			Tools []ToolDefinition `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out.String()), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", out.String(), err)
	}
	if len(resp.Result.Tools) != 1 || resp.Result.Tools[0].Name != "echo" {
		t.Errorf("expected only 'echo' to survive filtering, got %v", resp.Result.Tools)
	}
}

func TestServer_ToolsCall(t *testing.T) {
	provider := &fakeProvider{
		calls: map[string]CallToolResponse{
			"echo": {Success: true, Content: []ContentBlock{{Type: "text", Text: "hi"}}},
		},
	}
	server := NewServer(provider, "nested-agent")

	in := strings.NewReader(`{"jsonrpc":"2.0","id":"a","method":"tools/call","params":{"name":"echo","arguments":{}}}` + "\n")
	var out strings.Builder

	if err := server.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var resp struct {
		Result CallToolResponse `json:"result"`
	}
	if err := json.Unmarshal([]byte(out.String()), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", out.String(), err)
	}
	if !resp.Result.Success || resp.Result.Content[0].Text != "hi" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestServer_UnknownMethod(t *testing.T) {
	server := NewServer(&fakeProvider{}, "nested-agent")

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"nope","params":{}}` + "\n")
	var out strings.Builder

	if err := server.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var resp struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(out.String()), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", out.String(), err)
	}
	if resp.Error.Code != -32601 {
		t.Errorf("expected methodNotFound, got %+v", resp.Error)
	}
}

func TestServer_MalformedFrameSkipped(t *testing.T) {
	server := NewServer(&fakeProvider{}, "nested-agent")

	in := strings.NewReader("not json\n" + `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}` + "\n")
	var out strings.Builder

	if err := server.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if !strings.Contains(out.String(), `"result"`) {
		t.Errorf("expected the valid frame to still be answered, got %q", out.String())
	}
}
