// ABOUTME: Session Engine state machine and method vocabulary (§4.D)
// ABOUTME: Idle -> Connecting -> Initialized -> SessionActive (+- in-flight prompt) -> Disconnected

package acpsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullstream/acp-go/internal/acplog"
	"github.com/nullstream/acp-go/internal/acpmetrics"
	"github.com/nullstream/acp-go/internal/acprpc"
	"github.com/nullstream/acp-go/internal/acptools"
)

// EngineState is the per-connection state machine position (§4.D "State
// machine").
type EngineState int32

const (
	StateIdle EngineState = iota
	StateConnecting
	StateInitialized
	StateSessionActive
	StateDisconnected
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateInitialized:
		return "initialized"
	case StateSessionActive:
		return "session_active"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ProtocolVersion is the integer version this SDK prefers to negotiate
// (§4.D "Version negotiation").
const ProtocolVersion = 1

// SupportedVersion is one entry of the supportedVersions list offered
// alongside the preferred integer protocolVersion (§9 open question: both
// forms are sent for compatibility).
type SupportedVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// EngineOptions configures a new Engine. In the zero value batching and
// timing are both off; a BatchWindowMillis of 0 means DefaultBatchWindow
// (50ms) once batching is enabled. pkg/acp's Client turns batching on by
// default.
type EngineOptions struct {
	ClientInfo        ClientInfo
	SupportedVersions []SupportedVersion
	BatchingEnabled   bool
	BatchWindowMillis int
	TimingEnabled     bool
	Metrics           *acpmetrics.Metrics
}

// Engine implements the ACP method vocabulary on top of a Router, routing
// inbound requests/notifications to a Delegate and merging streaming
// updates before delivery (§2 component D).
type Engine struct {
	router   *acprpc.Router
	delegate Delegate
	merger   *Merger
	opts     EngineOptions

	state atomic.Int32

	mu              sync.Mutex
	initResp        *InitializeResponse
	currentSession  SessionId
	modes           *ModeState
	models          *ModelState
	promptInFlight  bool
	turnSeq         int64
	turnStats       *TurnStats
}

// NewEngine builds an Engine over router, answering inbound requests and
// updates with delegate. The engine installs itself as the router's
// handler set; Connect must not be called on the router directly.
func NewEngine(router *acprpc.Router, delegate Delegate, opts EngineOptions) *Engine {
	if delegate == nil {
		delegate = DefaultDelegate{}
	}
	window := DefaultBatchWindow
	if opts.BatchWindowMillis > 0 {
		window = time.Duration(opts.BatchWindowMillis) * time.Millisecond
	}

	e := &Engine{router: router, delegate: delegate, opts: opts}
	e.merger = NewMerger(opts.BatchingEnabled, window, opts.Metrics, e.deliverUpdate)
	router.SetHandlers(e.handleInboundRequest, e.handleNotification, e.handleOrphanError)
	return e
}

func (e *Engine) State() EngineState { return EngineState(e.state.Load()) }

func (e *Engine) setState(s EngineState) { e.state.Store(int32(s)) }

// Connect performs the initialize handshake and transitions Idle -> Initialized.
func (e *Engine) Connect(ctx context.Context) (*InitializeResponse, error) {
	if e.State() != StateIdle {
		return nil, ErrAlreadyConnected
	}
	e.setState(StateConnecting)

	if err := e.router.Connect(ctx); err != nil {
		e.setState(StateIdle)
		return nil, fmt.Errorf("acpsession: connect: %w", err)
	}

	versions := e.opts.SupportedVersions
	if len(versions) == 0 {
		versions = []SupportedVersion{{Major: 0, Minor: 3, Patch: 0}}
	}
	params, err := json.Marshal(map[string]any{
		"protocolVersion":   ProtocolVersion,
		"supportedVersions": versions,
		"capabilities": map[string]any{
			"fs": map[string]bool{"readTextFile": true, "writeTextFile": true},
		},
		"clientInfo": e.opts.ClientInfo,
	})
	if err != nil {
		e.setState(StateIdle)
		return nil, err
	}

	result, err := e.router.SendRequest(ctx, "initialize", params)
	if err != nil {
		e.setState(StateIdle)
		return nil, err
	}

	var resp InitializeResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		e.setState(StateIdle)
		return nil, fmt.Errorf("acpsession: decoding initialize result: %w", err)
	}

	e.mu.Lock()
	e.initResp = &resp
	e.mu.Unlock()
	e.setState(StateInitialized)
	return &resp, nil
}

// NewSession creates a session and makes it current (§4.D "new_session").
func (e *Engine) NewSession(ctx context.Context, cwd string, mcpServers []Value, model string, meta *Value) (*NewSessionResponse, error) {
	if e.State() < StateInitialized {
		return nil, ErrNotInitialized
	}

	body := map[string]any{"cwd": cwd}
	if len(mcpServers) > 0 {
		body["mcpServers"] = mcpServers
	}
	if model != "" {
		body["model"] = model
	}
	if meta != nil {
		body["_meta"] = meta
	}
	params, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	result, err := e.router.SendRequest(ctx, "session/new", params)
	if err != nil {
		return nil, err
	}

	var resp NewSessionResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("acpsession: decoding session/new result: %w", err)
	}

	e.mu.Lock()
	e.currentSession = resp.SessionID
	e.modes = resp.Modes
	e.models = resp.Models
	e.mu.Unlock()
	e.setState(StateSessionActive)
	return &resp, nil
}

// LoadSession attaches to an existing session, requiring the agent to have
// advertised loadSession during initialize (§4.D "load_session").
func (e *Engine) LoadSession(ctx context.Context, id SessionId) (*NewSessionResponse, error) {
	if e.State() < StateInitialized {
		return nil, ErrNotInitialized
	}

	e.mu.Lock()
	advertised := e.initResp != nil && e.initResp.AgentCapabilities.LoadSession
	e.mu.Unlock()
	if !advertised {
		return nil, ErrCapabilityNotAdvertised
	}

	params, err := json.Marshal(map[string]any{"sessionId": id})
	if err != nil {
		return nil, err
	}

	result, err := e.router.SendRequest(ctx, "session/load", params)
	if err != nil {
		return nil, err
	}

	var resp NewSessionResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("acpsession: decoding session/load result: %w", err)
	}
	if resp.SessionID == "" {
		resp.SessionID = id
	}

	e.mu.Lock()
	e.currentSession = resp.SessionID
	e.modes = resp.Modes
	e.models = resp.Models
	e.mu.Unlock()
	e.setState(StateSessionActive)
	return &resp, nil
}

// Prompt sends a session/prompt request for the current session and blocks
// until the agent resolves it with a stop reason (§4.D "prompt").
func (e *Engine) Prompt(ctx context.Context, content []ContentChunk) (*PromptResponse, error) {
	e.mu.Lock()
	session := e.currentSession
	if session == "" {
		e.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	if e.promptInFlight {
		e.mu.Unlock()
		return nil, ErrPromptInFlight
	}
	e.promptInFlight = true
	e.turnSeq++
	if e.opts.TimingEnabled {
		e.turnStats = newTurnStats(e.turnSeq)
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.promptInFlight = false
		e.mu.Unlock()
	}()

	params, err := json.Marshal(map[string]any{"sessionId": session, "prompt": content})
	if err != nil {
		return nil, err
	}

	result, err := e.router.SendRequest(ctx, "session/prompt", params)
	if err != nil {
		return nil, err
	}

	var resp PromptResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("acpsession: decoding session/prompt result: %w", err)
	}
	return &resp, nil
}

// Cancel sends the fire-and-forget session/cancel notification for the
// current session. The in-flight prompt future (if any) resolves only when
// the agent's response arrives, expected to carry stop_reason=cancelled.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	session := e.currentSession
	e.mu.Unlock()
	if session == "" {
		return ErrNoActiveSession
	}

	params, err := json.Marshal(map[string]any{"sessionId": session})
	if err != nil {
		return err
	}
	return e.router.SendNotification("session/cancel", params)
}

// SetSessionModel switches the current session's model (§4.D "set_session_model").
func (e *Engine) SetSessionModel(ctx context.Context, modelID string) error {
	e.mu.Lock()
	session := e.currentSession
	e.mu.Unlock()
	if session == "" {
		return ErrNoActiveSession
	}

	params, err := json.Marshal(map[string]any{"sessionId": session, "modelId": modelID})
	if err != nil {
		return err
	}
	if _, err := e.router.SendRequest(ctx, "session/set_model", params); err != nil {
		return err
	}

	e.mu.Lock()
	if e.models != nil {
		e.models.CurrentModelID = modelID
	}
	e.mu.Unlock()
	return nil
}

// SetSessionMode switches the current session's mode (§4.D "set_session_mode").
func (e *Engine) SetSessionMode(ctx context.Context, modeID string) error {
	e.mu.Lock()
	session := e.currentSession
	e.mu.Unlock()
	if session == "" {
		return ErrNoActiveSession
	}

	params, err := json.Marshal(map[string]any{"sessionId": session, "modeId": modeID})
	if err != nil {
		return err
	}
	if _, err := e.router.SendRequest(ctx, "session/set_mode", params); err != nil {
		return err
	}

	e.mu.Lock()
	if e.modes != nil {
		e.modes.CurrentModeID = modeID
	}
	e.mu.Unlock()
	return nil
}

// GetAgentManifest fetches the agent's identity/status manifest (§3.2, §4.D).
// An empty name falls back to the agent name reported by initialize.
func (e *Engine) GetAgentManifest(ctx context.Context, name string) (*Manifest, error) {
	if e.State() < StateInitialized {
		return nil, ErrNotInitialized
	}

	if name == "" {
		e.mu.Lock()
		if e.initResp != nil {
			name = e.initResp.AgentInfo.Name
		}
		e.mu.Unlock()
		if name == "" {
			return nil, ErrManifestUnavailable
		}
	}
	params, err := json.Marshal(map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	result, err := e.router.SendRequest(ctx, "agents/get", params)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(result, &manifest); err != nil {
		return nil, fmt.Errorf("acpsession: decoding agents/get result: %w", err)
	}
	return &manifest, nil
}

// Disconnect tears down the router/transport and drops any merge buffer.
func (e *Engine) Disconnect() error {
	e.mu.Lock()
	session := e.currentSession
	e.currentSession = ""
	e.mu.Unlock()
	if session != "" {
		e.merger.Drop(session)
	}
	e.setState(StateDisconnected)
	return e.router.Disconnect()
}

// deliverUpdate is the Merger's sink: it forwards a coalesced SessionUpdate
// to the delegate and updates timing stats when enabled.
func (e *Engine) deliverUpdate(update SessionUpdate) {
	e.mu.Lock()
	if e.opts.TimingEnabled && e.turnStats != nil {
		if e.turnStats.FirstChunkAt.IsZero() && len(update.MessageChunks) > 0 {
			e.turnStats.FirstChunkAt = time.Now()
		}
		for _, tc := range update.ToolCalls {
			if _, seen := e.turnStats.ToolCallStarts[tc.ID]; !seen {
				e.turnStats.ToolCallStarts[tc.ID] = time.Now()
				if e.turnStats.FirstToolCallAt.IsZero() {
					e.turnStats.FirstToolCallAt = time.Now()
				}
			}
		}
		e.turnStats.ChunkCount += len(update.MessageChunks)
	}
	e.mu.Unlock()

	e.delegate.OnUpdate(update)
}

func (e *Engine) handleNotification(method string, params json.RawMessage) {
	if method != "session/update" {
		acplog.Debug("acpsession: dropping unknown notification %s", method)
		return
	}
	update, err := DecodeSessionUpdate(params)
	if err != nil {
		acplog.Warn("acpsession: malformed session/update: %v", err)
		return
	}
	e.merger.Accept(update.SessionID, update)
}

func (e *Engine) handleOrphanError(rpcErr *acprpc.RPCError) {
	acplog.Warn("acpsession: orphan error frame (null id): %s", rpcErr.Message)
}

func (e *Engine) handleInboundRequest(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *acprpc.RPCError) {
	switch method {
	case "session/request_permission":
		return e.answerRequestPermission(ctx, params)
	case "fs/read_text_file":
		return e.answerReadTextFile(ctx, params)
	case "fs/write_text_file":
		return e.answerWriteTextFile(ctx, params)
	case "tools/list":
		return e.answerToolsList(ctx)
	case "tools/call":
		return e.answerToolsCall(ctx, params)
	default:
		return nil, &acprpc.RPCError{Code: acprpc.CodeMethodNotFound, Message: "Method not found: " + method}
	}
}

func (e *Engine) answerRequestPermission(ctx context.Context, params json.RawMessage) (json.RawMessage, *acprpc.RPCError) {
	var req RequestPermissionRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInvalidParams, Message: err.Error()}
	}

	optionID, err := e.delegate.ChoosePermission(ctx, req)
	if err != nil {
		optionID = "reject_once"
	}

	result, err := json.Marshal(map[string]any{
		"outcome": map[string]any{"outcome": "selected", "optionId": optionID},
	})
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}
	return result, nil
}

func (e *Engine) answerReadTextFile(ctx context.Context, params json.RawMessage) (json.RawMessage, *acprpc.RPCError) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInvalidParams, Message: err.Error()}
	}

	content, err := e.delegate.ReadFile(ctx, req.Path)
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeResourceNotFound, Message: err.Error()}
	}

	result, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}
	return result, nil
}

func (e *Engine) answerWriteTextFile(ctx context.Context, params json.RawMessage) (json.RawMessage, *acprpc.RPCError) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInvalidParams, Message: err.Error()}
	}

	if err := e.delegate.WriteFile(ctx, req.Path, req.Content); err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}

	result, err := json.Marshal(map[string]bool{"success": true})
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}
	return result, nil
}

func (e *Engine) answerToolsList(ctx context.Context) (json.RawMessage, *acprpc.RPCError) {
	tools, err := e.delegate.ListTools(ctx)
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}

	result, err := json.Marshal(map[string]any{"tools": acptools.FilterValid(tools)})
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}
	return result, nil
}

func (e *Engine) answerToolsCall(ctx context.Context, params json.RawMessage) (json.RawMessage, *acprpc.RPCError) {
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInvalidParams, Message: err.Error()}
	}

	resp, err := e.delegate.CallTool(ctx, req.Name, req.Arguments)
	if err != nil {
		if errors.Is(err, ErrDelegateRefused) {
			return nil, &acprpc.RPCError{Code: acprpc.CodeMethodNotFound, Message: "Method not found: tools/call"}
		}
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}

	result, err := json.Marshal(resp)
	if err != nil {
		return nil, &acprpc.RPCError{Code: acprpc.CodeInternalError, Message: err.Error()}
	}
	return result, nil
}
