// ABOUTME: Re-exposes a delegate's tools as an MCP-style JSON-RPC server over stdio (§4.D.2)
// ABOUTME: Adapted from the teacher's internal/mcp/server.go + bridge.go request loop

package acptools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nullstream/acp-go/internal/acplog"
	"github.com/nullstream/acp-go/internal/acprpc"
)

const maxExposeLineBuffer = 10 * 1024 * 1024

// Provider is the subset of a Delegate (§6.3) that expose.go needs: enough
// to answer tools/list and tools/call for a nested agent without depending
// on pkg/acp itself.
type Provider interface {
	ListTools(ctx context.Context) ([]ToolDefinition, error)
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (CallToolResponse, error)
}

// Server answers initialize/tools/list/tools/call over a pair of streams,
// the same newline-delimited-JSON shape as the core ACP wire protocol. It
// has no notion of sessions or prompts — it is a thin second surface for a
// nested agent that only wants the first agent's tools.
type Server struct {
	Provider   Provider
	ServerName string
}

// NewServer builds an exposure server fronting provider, advertised under
// name in its initialize response.
func NewServer(provider Provider, name string) *Server {
	return &Server{Provider: provider, ServerName: name}
}

// Serve reads newline-delimited request frames from r and writes responses
// to w until r is exhausted or ctx is canceled. Malformed frames are logged
// and skipped rather than terminating the loop, matching the tolerance the
// core transports apply to the primary wire (§4.B).
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxExposeLineBuffer)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}

		frame, err := acprpc.DecodeFrame(line)
		if err != nil {
			acplog.Warn("acptools: dropping malformed request: %v (%s)", err, acplog.Preview(line, 200))
			continue
		}
		if frame.Kind != acprpc.FrameInboundRequest {
			continue
		}

		result, rpcErr := s.handle(ctx, frame.Method, frame.Params)
		var data []byte
		if rpcErr != nil {
			data, err = acprpc.EncodeError(frame.ID, rpcErr.Code, rpcErr.Message)
		} else {
			data, err = acprpc.EncodeResponse(frame.ID, result)
		}
		if err != nil {
			acplog.Error("acptools: encoding response to %s: %v", frame.Method, err)
			continue
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("acptools: writing response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *acprpc.RPCError) {
	switch method {
	case "initialize":
		return s.marshal(map[string]any{
			"serverInfo": map[string]string{"name": s.ServerName},
		})

	case "tools/list":
		defs, err := s.Provider.ListTools(ctx)
		if err != nil {
			return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
		}
		return s.marshal(map[string]any{"tools": FilterValid(defs)})

	case "tools/call":
		var req struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, &acprpc.RPCError{Code: acprpc.CodeInvalidParams, Message: err.Error()}
		}
		resp, err := s.Provider.CallTool(ctx, req.Name, req.Arguments)
		if err != nil {
			return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
		}
		return s.marshal(resp)

	default:
		return nil, &acprpc.RPCError{Code: acprpc.CodeMethodNotFound, Message: "method not found: " + method}
	}
}

func (s *Server) marshal(v any) (json.RawMessage, *acprpc.RPCError) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}
	return data, nil
}
