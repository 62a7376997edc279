// ABOUTME: Per-session update batching: coalesces a burst of session/update notifications (§3, §4.D "Merger")
// ABOUTME: message-chunk/tool-call lists append, plan/commands/modes overwrite; flush is atomic and ordered

package acpsession

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nullstream/acp-go/internal/acplog"
	"github.com/nullstream/acp-go/internal/acpmetrics"
)

// DefaultBatchWindow is the flush interval used when ACP_BATCH_MS is unset
// (§6.4).
const DefaultBatchWindow = 50 * time.Millisecond

// mergeBuffer is the mailbox described in §3 "Update merge buffer": it
// accumulates one session's in-flight updates until a flush fires.
type mergeBuffer struct {
	mu   sync.Mutex
	data SessionUpdate
	// plan/commands/modes overwrite; track whether anything was set at all so
	// an empty flush can be skipped (§4.D "if empty, nothing is delivered").
	dirty bool
	timer *time.Timer
}

// Merger batches session/update notifications per session and delivers the
// coalesced result to a sink function on a one-shot timer. When disabled,
// every update is delivered verbatim and synchronously.
type Merger struct {
	window  time.Duration
	enabled bool
	sink    func(SessionUpdate)
	metrics *acpmetrics.Metrics

	mu      sync.Mutex
	buffers map[SessionId]*mergeBuffer
}

// NewMerger builds a Merger. sink is invoked on a flush (or synchronously,
// per update, when enabled is false); it must not block for long since it
// runs on the timer goroutine.
func NewMerger(enabled bool, window time.Duration, metrics *acpmetrics.Metrics, sink func(SessionUpdate)) *Merger {
	if window <= 0 {
		window = DefaultBatchWindow
	}
	return &Merger{
		enabled: enabled,
		window:  window,
		sink:    sink,
		metrics: metrics,
		buffers: make(map[SessionId]*mergeBuffer),
	}
}

// Accept merges one inbound update into the session's buffer, arming a
// flush timer if one is not already pending. When batching is disabled the
// update is delivered immediately and verbatim.
func (m *Merger) Accept(sessionID SessionId, update SessionUpdate) {
	if !m.enabled {
		update.SessionID = sessionID
		m.sink(update)
		return
	}

	m.mu.Lock()
	buf, ok := m.buffers[sessionID]
	if !ok {
		buf = &mergeBuffer{}
		m.buffers[sessionID] = buf
	}
	m.mu.Unlock()

	buf.mu.Lock()
	buf.data.SessionID = sessionID
	buf.data.MessageChunks = append(buf.data.MessageChunks, update.MessageChunks...)
	buf.data.ToolCalls = append(buf.data.ToolCalls, update.ToolCalls...)
	if update.Plan != nil {
		buf.data.Plan = update.Plan
	}
	if update.Commands != nil {
		buf.data.Commands = update.Commands
	}
	if update.Modes != nil {
		buf.data.Modes = update.Modes
	}
	if len(update.MessageChunks) > 0 || len(update.ToolCalls) > 0 || update.Plan != nil || update.Commands != nil || update.Modes != nil {
		buf.dirty = true
	}
	needsTimer := buf.timer == nil
	if needsTimer {
		buf.timer = time.AfterFunc(m.window, func() { m.flush(sessionID) })
	}
	buf.mu.Unlock()
}

// flush atomically takes the buffer's contents, converts it into one
// SessionUpdate, and delivers it to the sink — unless it was empty, in
// which case nothing is delivered (§4.D).
func (m *Merger) flush(sessionID SessionId) {
	m.mu.Lock()
	buf, ok := m.buffers[sessionID]
	m.mu.Unlock()
	if !ok {
		return
	}

	buf.mu.Lock()
	taken := buf.data
	dirty := buf.dirty
	buf.data = SessionUpdate{}
	buf.dirty = false
	buf.mu.Unlock()

	if dirty {
		flushID := uuid.NewString()
		acplog.Event("acpsession update flush", "session", string(sessionID), "flush_id", flushID,
			"chunks", len(taken.MessageChunks), "tool_calls", len(taken.ToolCalls))
		m.metrics.ObserveFlush()

		m.sink(taken)
	}

	// The timer handle stays set until delivery returns, so updates accepted
	// meanwhile wait for the next flush instead of overlapping this one.
	buf.mu.Lock()
	buf.timer = nil
	if buf.dirty {
		buf.timer = time.AfterFunc(m.window, func() { m.flush(sessionID) })
	}
	buf.mu.Unlock()
}

// Drop removes a session's buffer without flushing, used on disconnect and
// session teardown so a stray timer does not fire into a dead delegate.
func (m *Merger) Drop(sessionID SessionId) {
	m.mu.Lock()
	buf, ok := m.buffers[sessionID]
	delete(m.buffers, sessionID)
	m.mu.Unlock()
	if !ok {
		return
	}
	buf.mu.Lock()
	if buf.timer != nil {
		buf.timer.Stop()
	}
	buf.mu.Unlock()
}
