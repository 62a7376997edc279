// ABOUTME: Public re-exports of the Session Engine's delegate contract and data model (§6.3)
// ABOUTME: Type aliases keep one canonical definition in internal/acpsession while giving callers a pkg/acp-only import

package acp

import (
	"github.com/nullstream/acp-go/internal/acpsession"
	"github.com/nullstream/acp-go/internal/acptools"
)

// Delegate is the host application's implementation of inbound hooks
// (permission, filesystem, tools, updates). See acpsession.Delegate for the
// full method set; this alias lets applications depend only on pkg/acp.
type Delegate = acpsession.Delegate

// DefaultDelegate ignores updates, rejects permission requests, lists no
// tools, and refuses file and tool-call hooks. Embed it in a custom delegate
// and override only the hooks needed.
type DefaultDelegate = acpsession.DefaultDelegate

type (
	SessionId                = acpsession.SessionId
	SessionUpdate             = acpsession.SessionUpdate
	ContentChunk              = acpsession.ContentChunk
	ContentChunkKind          = acpsession.ContentChunkKind
	ToolCallSnapshot          = acpsession.ToolCallSnapshot
	ToolCallStatus            = acpsession.ToolCallStatus
	PlanSnapshot              = acpsession.PlanSnapshot
	PlanEntry                 = acpsession.PlanEntry
	PlanEntryStatus           = acpsession.PlanEntryStatus
	SlashCommand              = acpsession.SlashCommand
	ModeState                 = acpsession.ModeState
	ModelState                = acpsession.ModelState
	CapabilitiesSnapshot      = acpsession.CapabilitiesSnapshot
	InitializeResponse        = acpsession.InitializeResponse
	NewSessionResponse        = acpsession.NewSessionResponse
	PromptResponse            = acpsession.PromptResponse
	StopReason                = acpsession.StopReason
	Manifest                  = acpsession.Manifest
	RequestPermissionRequest  = acpsession.RequestPermissionRequest
	PermissionOption          = acpsession.PermissionOption
	PermissionOptionId        = acpsession.PermissionOptionId
	Value                     = acpsession.Value
	ToolDefinition            = acptools.ToolDefinition
	CallToolResponse          = acptools.CallToolResponse
	ContentBlock              = acptools.ContentBlock
)

const (
	ContentText       = acpsession.ContentText
	ContentToolCall   = acpsession.ContentToolCall
	ContentToolResult = acpsession.ContentToolResult
	ContentImage      = acpsession.ContentImage
	ContentAudio      = acpsession.ContentAudio

	StopEndTurn   = acpsession.StopEndTurn
	StopMaxTokens = acpsession.StopMaxTokens
	StopCancelled = acpsession.StopCancelled
	StopError     = acpsession.StopError

	ToolCallPending   = acpsession.ToolCallPending
	ToolCallRunning   = acpsession.ToolCallRunning
	ToolCallComplete  = acpsession.ToolCallComplete
	ToolCallFailed    = acpsession.ToolCallFailed
	ToolCallCancelled = acpsession.ToolCallCancelled
)
