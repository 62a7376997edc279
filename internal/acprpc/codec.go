// ABOUTME: JSON-RPC 2.0 frame encode/decode and classification (§4.A Wire Codec)
// ABOUTME: Decoder probes id/method/result/error presence; never guesses on ambiguity

package acprpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const jsonRPCVersion = "2.0"

// FrameKind classifies a decoded JSON-RPC frame into one of the four
// disjoint wire shapes described in §3 "Frames (wire-level)".
type FrameKind int

const (
	// FrameUnknown marks a frame that could not be classified — a parse error.
	FrameUnknown FrameKind = iota
	FrameResponse
	FrameErrorResponse
	FrameNotification
	FrameInboundRequest
)

func (k FrameKind) String() string {
	switch k {
	case FrameResponse:
		return "response"
	case FrameErrorResponse:
		return "error"
	case FrameNotification:
		return "notification"
	case FrameInboundRequest:
		return "request"
	default:
		return "unknown"
	}
}

// RPCError is a JSON-RPC 2.0 error object (§6.1 for the code table).
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("acprpc: %d %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes plus the ACP domain codes (§6.1).
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeAuthRequired   = -32000
	CodeResourceNotFound = -32002
)

// Frame is the classified, decoded form of one line of wire traffic. Only
// the fields relevant to its Kind are populated; Result is retained as raw
// bytes so the caller can decode it into the type matching the original
// request (§4.A "the codec does not interpret result at this layer").
type Frame struct {
	Kind   FrameKind
	HasID  bool
	ID     RequestId
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Error  *RPCError
	Raw    []byte
}

// rawFrame mirrors the wire shape loosely enough to probe for discriminants
// without committing to any one of the four interpretations up front.
type rawFrame struct {
	ID     json.RawMessage `json:"id"`
	Method *string         `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// DecodeFrame classifies one already-extracted JSON object line. The
// transport is responsible for skipping empty lines and lines that do not
// begin with '{' before calling this (§4.A).
func DecodeFrame(line []byte) (*Frame, error) {
	var raw rawFrame
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("acprpc: malformed frame: %w", err)
	}

	hasID := len(raw.ID) > 0 && !bytes.Equal(bytes.TrimSpace(raw.ID), []byte("null"))

	f := &Frame{Raw: append([]byte(nil), line...)}

	switch {
	case raw.Error != nil:
		f.Kind = FrameErrorResponse
		f.Error = raw.Error
		f.HasID = hasID
		if hasID {
			if err := json.Unmarshal(raw.ID, &f.ID); err != nil {
				return nil, fmt.Errorf("acprpc: malformed id on error frame: %w", err)
			}
		}
		return f, nil

	case hasID && raw.Result != nil:
		f.Kind = FrameResponse
		f.HasID = true
		f.Result = raw.Result
		if err := json.Unmarshal(raw.ID, &f.ID); err != nil {
			return nil, fmt.Errorf("acprpc: malformed id on response frame: %w", err)
		}
		return f, nil

	case hasID && raw.Method != nil:
		f.Kind = FrameInboundRequest
		f.HasID = true
		f.Method = *raw.Method
		f.Params = raw.Params
		if err := json.Unmarshal(raw.ID, &f.ID); err != nil {
			return nil, fmt.Errorf("acprpc: malformed id on request frame: %w", err)
		}
		return f, nil

	case raw.Method != nil:
		f.Kind = FrameNotification
		f.Method = *raw.Method
		f.Params = raw.Params
		return f, nil

	default:
		return nil, fmt.Errorf("acprpc: unclassifiable frame (no id/method/result/error)")
	}
}

// wireRequest/wireNotification/wireResponse/wireErrorResponse are the
// canonical outbound shapes.
type wireRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      RequestId       `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type wireNotification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      RequestId       `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type wireErrorResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      *RequestId `json:"id"`
	Error   *RPCError `json:"error"`
}

// encode marshals v to a single line terminated by exactly one '\n', with
// HTML escaping disabled (forward slashes are already left unescaped by
// encoding/json; disabling HTML escaping additionally protects literal
// '<', '>' and '&' bytes that may appear in streamed agent text).
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeRequest renders an outbound request frame.
func EncodeRequest(id RequestId, method string, params json.RawMessage) ([]byte, error) {
	return encode(wireRequest{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params})
}

// EncodeNotification renders an outbound notification frame (no id).
func EncodeNotification(method string, params json.RawMessage) ([]byte, error) {
	return encode(wireNotification{JSONRPC: jsonRPCVersion, Method: method, Params: params})
}

// EncodeResponse renders a success response frame for an inbound request.
func EncodeResponse(id RequestId, result json.RawMessage) ([]byte, error) {
	return encode(wireResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

// EncodeError renders an error response frame for an inbound request.
func EncodeError(id RequestId, code int, message string) ([]byte, error) {
	return encode(wireErrorResponse{
		JSONRPC: jsonRPCVersion,
		ID:      &id,
		Error:   &RPCError{Code: code, Message: message},
	})
}
