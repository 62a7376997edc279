// ABOUTME: Delegate is the host application's capability set, not a base class (§6.3, §9)
// ABOUTME: DefaultDelegate refuses every hook so applications only implement what they need

package acpsession

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nullstream/acp-go/internal/acptools"
)

// ErrDelegateRefused is returned by DefaultDelegate's stub implementations.
var ErrDelegateRefused = errors.New("acpsession: delegate does not implement this hook")

// RequestPermissionRequest is the decoded form of an inbound
// session/request_permission call.
type RequestPermissionRequest struct {
	SessionID   SessionId          `json:"sessionId"`
	ToolCallID  string             `json:"toolCallId,omitempty"`
	Description string             `json:"description,omitempty"`
	Options     []PermissionOption `json:"options"`
	Content     []ContentChunk     `json:"content,omitempty"`
}

// PermissionOption is one choice offered to the delegate.
type PermissionOption struct {
	OptionID PermissionOptionId `json:"optionId"`
	Name     string             `json:"name"`
	Kind     string             `json:"kind,omitempty"`
}

// Delegate is the host application's implementation of every inbound hook
// the Session Engine needs answered. Calls can overlap: OnUpdate runs on the
// merger's flush timer goroutine (or the router's dispatch goroutine when
// batching is off), and each inbound request hook runs on its own
// goroutine. It is a record of function-shaped capabilities,
// not a class to subclass — a host that only cares about streaming text
// embeds DefaultDelegate and overrides OnUpdate alone.
type Delegate interface {
	OnUpdate(update SessionUpdate)
	ChoosePermission(ctx context.Context, req RequestPermissionRequest) (PermissionOptionId, error)
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path string, content string) error
	ListTools(ctx context.Context) ([]acptools.ToolDefinition, error)
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (acptools.CallToolResponse, error)
}

// DefaultDelegate ignores updates, answers permission requests with
// "reject_once", lists no tools, and refuses ReadFile, WriteFile and CallTool
// with ErrDelegateRefused. Embed it and override only the hooks an
// application needs.
type DefaultDelegate struct{}

func (DefaultDelegate) OnUpdate(SessionUpdate) {}

func (DefaultDelegate) ChoosePermission(context.Context, RequestPermissionRequest) (PermissionOptionId, error) {
	return "reject_once", nil
}

func (DefaultDelegate) ReadFile(context.Context, string) (string, error) {
	return "", ErrDelegateRefused
}

func (DefaultDelegate) WriteFile(context.Context, string, string) error {
	return ErrDelegateRefused
}

func (DefaultDelegate) ListTools(context.Context) ([]acptools.ToolDefinition, error) {
	return nil, nil
}

func (DefaultDelegate) CallTool(context.Context, string, json.RawMessage) (acptools.CallToolResponse, error) {
	return acptools.CallToolResponse{}, ErrDelegateRefused
}
