// ABOUTME: session/update payload decoding — both tagged and untagged forms collapse to one SessionUpdate (§4.D)
// ABOUTME: ContentChunk/ToolCallSnapshot/PlanSnapshot are the merger's unit of work

package acpsession

import "encoding/json"

// ContentChunkKind discriminates one element of a message-chunk list.
type ContentChunkKind string

const (
	ContentText       ContentChunkKind = "text"
	ContentToolCall   ContentChunkKind = "tool_call"
	ContentToolResult ContentChunkKind = "tool_result"
	ContentImage      ContentChunkKind = "image"
	ContentAudio      ContentChunkKind = "audio"
)

// ContentChunk is one piece of streamed content.
type ContentChunk struct {
	Type       ContentChunkKind `json:"type"`
	Text       string           `json:"text,omitempty"`
	ToolCallID string           `json:"toolCallId,omitempty"`
	Data       string           `json:"data,omitempty"`
	MimeType   string           `json:"mimeType,omitempty"`
}

// ToolCallSnapshot is one tool call's current state as advertised by an
// agent, carried either on a fresh tool_call update or a tool_call_update.
type ToolCallSnapshot struct {
	ID     string          `json:"toolCallId"`
	Title  string          `json:"title,omitempty"`
	Status ToolCallStatus  `json:"status"`
	Input  *Value          `json:"rawInput,omitempty"`
	Result *Value          `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// PlanEntry is one step of a plan snapshot.
type PlanEntry struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   PlanEntryStatus `json:"status"`
	Children []PlanEntry     `json:"children,omitempty"`
}

// PlanSnapshot is the latest plan the agent has advertised.
type PlanSnapshot struct {
	Title   string      `json:"title,omitempty"`
	Entries []PlanEntry `json:"entries,omitempty"`
}

// SlashCommand is one entry of an available_commands_update.
type SlashCommand struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SessionUpdate is the single record every form of session/update collapses
// into. Only the fields present on the inbound notification are populated;
// the merger (merger.go) is responsible for combining several of these.
type SessionUpdate struct {
	SessionID     SessionId          `json:"-"`
	MessageChunks []ContentChunk     `json:"messageChunks,omitempty"`
	ToolCalls     []ToolCallSnapshot `json:"toolCalls,omitempty"`
	Plan          *PlanSnapshot      `json:"plan,omitempty"`
	Commands      []SlashCommand     `json:"commands,omitempty"`
	Modes         *ModeState         `json:"modes,omitempty"`
}

// sessionUpdateKind is the discriminator value of the tagged wire form.
type sessionUpdateKind string

const (
	updateAgentMessageChunk     sessionUpdateKind = "agent_message_chunk"
	updateToolCall              sessionUpdateKind = "tool_call"
	updateToolCallUpdate        sessionUpdateKind = "tool_call_update"
	updateAvailableCommands     sessionUpdateKind = "available_commands_update"
	updatePlan                  sessionUpdateKind = "plan"
	updateCurrentModeUpdate     sessionUpdateKind = "current_mode_update"
)

// wireUpdate is the envelope carried by a session/update notification's
// params, covering both the tagged form (sessionUpdate discriminator
// present) and the untagged form (bare natural fields, no discriminator).
type wireUpdate struct {
	SessionID      SessionId         `json:"sessionId"`
	SessionUpdate  sessionUpdateKind `json:"sessionUpdate,omitempty"`
	Content        *ContentChunk     `json:"content,omitempty"`
	MessageChunks  []ContentChunk    `json:"messageChunks,omitempty"`
	ToolCall       *ToolCallSnapshot `json:"toolCall,omitempty"`
	ToolCalls      []ToolCallSnapshot `json:"toolCalls,omitempty"`
	Plan           *PlanSnapshot     `json:"plan,omitempty"`
	AvailableCommands []SlashCommand `json:"availableCommands,omitempty"`
	Commands       []SlashCommand    `json:"commands,omitempty"`
	CurrentModeID  string            `json:"currentModeId,omitempty"`
	Modes          *ModeState        `json:"modes,omitempty"`
}

// DecodeSessionUpdate accepts a session/update notification's raw params
// and produces one SessionUpdate regardless of whether the agent used the
// tagged discriminator form or the bare untagged form (§9 open question:
// both are supported, neither is preferred).
func DecodeSessionUpdate(params []byte) (SessionUpdate, error) {
	var w wireUpdate
	if err := json.Unmarshal(params, &w); err != nil {
		return SessionUpdate{}, err
	}

	out := SessionUpdate{SessionID: w.SessionID}

	switch w.SessionUpdate {
	case updateAgentMessageChunk:
		if w.Content != nil {
			out.MessageChunks = append(out.MessageChunks, *w.Content)
		}
		out.MessageChunks = append(out.MessageChunks, w.MessageChunks...)
	case updateToolCall, updateToolCallUpdate:
		if w.ToolCall != nil {
			out.ToolCalls = append(out.ToolCalls, *w.ToolCall)
		}
		out.ToolCalls = append(out.ToolCalls, w.ToolCalls...)
	case updateAvailableCommands:
		if len(w.AvailableCommands) > 0 {
			out.Commands = w.AvailableCommands
		} else {
			out.Commands = w.Commands
		}
	case updatePlan:
		out.Plan = w.Plan
	case updateCurrentModeUpdate:
		if w.Modes != nil {
			out.Modes = w.Modes
		} else if w.CurrentModeID != "" {
			out.Modes = &ModeState{CurrentModeID: w.CurrentModeID}
		}
	default:
		// Untagged form: whichever natural fields are present apply directly.
		if w.Content != nil {
			out.MessageChunks = append(out.MessageChunks, *w.Content)
		}
		out.MessageChunks = append(out.MessageChunks, w.MessageChunks...)
		if w.ToolCall != nil {
			out.ToolCalls = append(out.ToolCalls, *w.ToolCall)
		}
		out.ToolCalls = append(out.ToolCalls, w.ToolCalls...)
		out.Plan = w.Plan
		if len(w.AvailableCommands) > 0 {
			out.Commands = w.AvailableCommands
		} else if len(w.Commands) > 0 {
			out.Commands = w.Commands
		}
		out.Modes = w.Modes
	}

	return out, nil
}
