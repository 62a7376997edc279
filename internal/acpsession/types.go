// ABOUTME: Session-scoped data model: ids, mode/model/capability state, timing stats (§3 "Session state")
// ABOUTME: All ids are opaque agent-issued strings, stable only for the lifetime of one connection

package acpsession

import "time"

type SessionId string
type TerminalId string
type PermissionOptionId string

// ToolCallStatus/PlanEntryStatus/StopReason are string types whose constants
// spell the wire vocabulary verbatim. Decoding does not check the value: a
// string outside the listed constants is kept as received.
type ToolCallStatus string

const (
	ToolCallPending   ToolCallStatus = "pending"
	ToolCallRunning   ToolCallStatus = "running"
	ToolCallComplete  ToolCallStatus = "complete"
	ToolCallFailed    ToolCallStatus = "failed"
	ToolCallCancelled ToolCallStatus = "cancelled"
)

type PlanEntryStatus string

const (
	PlanPending    PlanEntryStatus = "pending"
	PlanInProgress PlanEntryStatus = "in_progress"
	PlanComplete   PlanEntryStatus = "complete"
	PlanFailed     PlanEntryStatus = "failed"
	PlanSkipped    PlanEntryStatus = "skipped"
)

type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopCancelled StopReason = "cancelled"
	StopError     StopReason = "error"
)

// Mode is one entry in a ModeState's available-modes list.
type Mode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModeState is the full set of modes the agent offers plus the current one.
type ModeState struct {
	AvailableModes []Mode `json:"availableModes,omitempty"`
	CurrentModeID  string `json:"currentModeId,omitempty"`
}

// Model is one entry in a ModelState's available-models list.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// ModelState is the full set of models the agent offers plus the current one.
type ModelState struct {
	AvailableModels []Model `json:"availableModels,omitempty"`
	CurrentModelID  string  `json:"currentModelId,omitempty"`
}

// FSCapabilities describes the filesystem operations an agent can issue
// against the delegate.
type FSCapabilities struct {
	ReadTextFile  bool `json:"readTextFile,omitempty"`
	WriteTextFile bool `json:"writeTextFile,omitempty"`
}

// PromptCapabilities describes the input modalities an agent accepts in a
// prompt turn.
type PromptCapabilities struct {
	Image            bool `json:"image,omitempty"`
	Audio            bool `json:"audio,omitempty"`
	EmbeddedContext  bool `json:"embeddedContext,omitempty"`
}

// CapabilitiesSnapshot is the negotiated capability set from initialize.
type CapabilitiesSnapshot struct {
	FS                 FSCapabilities     `json:"fs,omitempty"`
	Terminal           bool               `json:"terminal,omitempty"`
	MCPServers         []Value            `json:"mcpServers,omitempty"`
	PromptCapabilities PromptCapabilities `json:"promptCapabilities,omitempty"`
	LoadSession        bool               `json:"loadSession,omitempty"`
}

// TurnStats is the per-prompt-turn timing/statistics record kept when
// ACP_TIMING is enabled (§3 "Per-session timing/statistics").
type TurnStats struct {
	Seq             int64
	StartedAt       time.Time
	FirstChunkAt    time.Time
	FirstToolCallAt time.Time
	ChunkCount      int
	ByteCount       int
	ToolCallStarts  map[string]time.Time
}

func newTurnStats(seq int64) *TurnStats {
	return &TurnStats{Seq: seq, StartedAt: time.Now(), ToolCallStarts: make(map[string]time.Time)}
}

// AgentInfo/ClientInfo identify the two ends of a connection in initialize.
type AgentInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResponse is the negotiated result of the initialize handshake.
type InitializeResponse struct {
	ProtocolVersion  int                  `json:"protocolVersion"`
	AgentCapabilities CapabilitiesSnapshot `json:"agentCapabilities"`
	AgentInfo        AgentInfo            `json:"agentInfo"`
	AuthMethods      []Value              `json:"authMethods,omitempty"`
}

// NewSessionResponse is returned by session/new.
type NewSessionResponse struct {
	SessionID SessionId   `json:"sessionId"`
	Modes     *ModeState  `json:"modes,omitempty"`
	Models    *ModelState `json:"models,omitempty"`
}

// PromptResponse is the terminal result of a session/prompt turn.
type PromptResponse struct {
	StopReason StopReason `json:"stopReason"`
	Usage      *Value     `json:"usage,omitempty"`
}

// Manifest is the agent-identity/status payload returned by agents/get
// (§3.2, §4.D).
type Manifest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      map[string]Value  `json:"status,omitempty"`
	Metadata    map[string]Value  `json:"metadata,omitempty"`
	InputTypes  []string          `json:"inputTypes,omitempty"`
	OutputTypes []string          `json:"outputTypes,omitempty"`
}
