// ABOUTME: Message router: outbound id assignment, pending-future correlation, inbound dispatch (§4.C)
// ABOUTME: Outbound ids are monotonic integer-valued strings from "1", reset on each Connect; unknown ids are discarded

package acprpc

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullstream/acp-go/internal/acplog"
)

// InboundRequestHandler answers an inbound JSON-RPC request. Returning a
// non-nil rpcErr sends an error response instead of result.
type InboundRequestHandler func(ctx context.Context, method string, params json.RawMessage) (result json.RawMessage, rpcErr *RPCError)

// NotificationHandler handles a fire-and-forget inbound notification.
type NotificationHandler func(method string, params json.RawMessage)

// OrphanErrorHandler is invoked for an inbound error frame whose id is null
// (§4.C "surfaced to the inbound handler for visibility but resolves no future").
type OrphanErrorHandler func(*RPCError)

type pendingResult struct {
	result json.RawMessage
	rpcErr *RPCError
	err    error
}

type pendingEntry struct {
	ch        chan pendingResult
	method    string
	startedAt time.Time
	sentBytes int
}

// Router sits above a Transport and implements the correlation engine: it
// assigns outbound request ids, parks callers on a future keyed by id,
// matches inbound responses/errors to those futures, and dispatches inbound
// requests/notifications to registered handlers.
type Router struct {
	transport Transport

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[string]*pendingEntry

	reqHandler   InboundRequestHandler
	notifHandler NotificationHandler
	orphanErr    OrphanErrorHandler

	timingEnabled bool
	observer      RequestObserver

	disconnectOnce sync.Once
	disconnected   atomic.Bool
	done           chan struct{}
}

// RequestObserver receives per-request timing when instrumentation is
// enabled. internal/acpmetrics.Metrics satisfies this implicitly.
type RequestObserver interface {
	ObserveRequest(method string, seconds float64)
}

// NewRouter builds a Router over the given Transport. Timing instrumentation
// (§4.C.1, §6.4 ACP_TIMING) is enabled by the caller.
func NewRouter(transport Transport, timingEnabled bool) *Router {
	return &Router{
		transport:     transport,
		pending:       make(map[string]*pendingEntry),
		timingEnabled: timingEnabled,
		done:          make(chan struct{}),
	}
}

// SetObserver attaches a metrics observer (typically *acpmetrics.Metrics).
// Optional; nil is a valid no-op state.
func (r *Router) SetObserver(o RequestObserver) {
	r.observer = o
}

// SetHandlers registers the Session Engine's inbound hooks. Must be called
// before Connect.
func (r *Router) SetHandlers(reqHandler InboundRequestHandler, notifHandler NotificationHandler, orphanErr OrphanErrorHandler) {
	r.reqHandler = reqHandler
	r.notifHandler = notifHandler
	r.orphanErr = orphanErr
}

// Connect resets the id counter to zero and starts the transport and the
// dispatch loop.
func (r *Router) Connect(ctx context.Context) error {
	r.nextID.Store(0)
	if err := r.transport.Connect(ctx); err != nil {
		return err
	}
	go r.dispatchLoop()
	return nil
}

// Disconnect tears down the transport and resolves every pending future
// with ErrDisconnected exactly once (§3 invariants, §8 property 5).
func (r *Router) Disconnect() error {
	err := r.transport.Disconnect()
	r.terminalDisconnect(ErrDisconnected)
	return err
}

func (r *Router) terminalDisconnect(cause error) {
	r.disconnectOnce.Do(func() {
		r.disconnected.Store(true)
		close(r.done)

		r.mu.Lock()
		pending := r.pending
		r.pending = make(map[string]*pendingEntry)
		r.mu.Unlock()

		for _, entry := range pending {
			select {
			case entry.ch <- pendingResult{err: cause}:
			default:
			}
		}
	})
}

func (r *Router) dispatchLoop() {
	for {
		select {
		case frame, ok := <-r.transport.Inbound():
			if !ok {
				return
			}
			r.handleFrame(frame)
		case err, ok := <-r.transport.Errs():
			if ok {
				r.terminalDisconnect(err)
			}
			return
		}
	}
}

func (r *Router) handleFrame(frame *Frame) {
	switch frame.Kind {
	case FrameResponse:
		r.resolve(frame.ID, pendingResult{result: frame.Result})

	case FrameErrorResponse:
		if !frame.HasID {
			acplog.Warn("acprpc: error frame with null id: %s", frame.Error.Message)
			if r.orphanErr != nil {
				r.orphanErr(frame.Error)
			}
			return
		}
		r.resolve(frame.ID, pendingResult{rpcErr: frame.Error})

	case FrameInboundRequest:
		go r.answerInboundRequest(frame)

	case FrameNotification:
		if r.notifHandler != nil {
			r.notifHandler(frame.Method, frame.Params)
		}
	}
}

func (r *Router) resolve(id RequestId, res pendingResult) {
	r.mu.Lock()
	entry, ok := r.pending[id.Key()]
	if ok {
		delete(r.pending, id.Key())
	}
	r.mu.Unlock()

	if !ok {
		// Unknown id: a late response after cancellation is normal (§4.C).
		acplog.Debug("acprpc: response for unknown id %s discarded", id.String())
		return
	}

	if r.timingEnabled {
		elapsed := time.Since(entry.startedAt)
		respBytes := len(res.result)
		acplog.Event("acprpc request completed",
			"method", entry.method, "elapsed_ms", elapsed.Milliseconds(),
			"sent_bytes", entry.sentBytes, "response_bytes", respBytes)
		if r.observer != nil {
			r.observer.ObserveRequest(entry.method, elapsed.Seconds())
		}
	}

	select {
	case entry.ch <- res:
	default:
	}
}

func (r *Router) answerInboundRequest(frame *Frame) {
	if r.reqHandler == nil {
		r.writeError(frame.ID, CodeMethodNotFound, "method not found: "+frame.Method)
		return
	}

	result, rpcErr := r.reqHandler(context.Background(), frame.Method, frame.Params)
	if rpcErr != nil {
		r.writeError(frame.ID, rpcErr.Code, rpcErr.Message)
		return
	}
	data, err := EncodeResponse(frame.ID, result)
	if err != nil {
		acplog.Error("acprpc: encoding response to %s: %v", frame.Method, err)
		return
	}
	if err := r.transport.WriteFrame(data); err != nil {
		acplog.Error("acprpc: writing response to %s: %v", frame.Method, err)
	}
}

func (r *Router) writeError(id RequestId, code int, message string) {
	data, err := EncodeError(id, code, message)
	if err != nil {
		acplog.Error("acprpc: encoding error response: %v", err)
		return
	}
	if err := r.transport.WriteFrame(data); err != nil {
		acplog.Error("acprpc: writing error response: %v", err)
	}
}

// SendRequest assigns the next monotonic integer id (rendered on the wire
// as a string per §3), parks the caller on a future, writes the request,
// and returns the raw result bytes on success.
func (r *Router) SendRequest(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if r.disconnected.Load() {
		return nil, ErrDisconnected
	}

	id := StringRequestId(strconv.FormatInt(r.nextID.Add(1), 10))
	data, err := EncodeRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	entry := &pendingEntry{
		ch:        make(chan pendingResult, 1),
		method:    method,
		startedAt: time.Now(),
		sentBytes: len(data),
	}

	r.mu.Lock()
	r.pending[id.Key()] = entry
	r.mu.Unlock()

	cleanup := func() {
		r.mu.Lock()
		delete(r.pending, id.Key())
		r.mu.Unlock()
	}

	if err := r.transport.WriteFrame(data); err != nil {
		cleanup()
		return nil, err
	}

	select {
	case res := <-entry.ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.rpcErr != nil {
			return nil, res.rpcErr
		}
		return res.result, nil
	case <-ctx.Done():
		cleanup()
		return nil, ctx.Err()
	case <-r.done:
		return nil, ErrDisconnected
	}
}

// SendNotification writes a fire-and-forget outbound notification.
func (r *Router) SendNotification(method string, params json.RawMessage) error {
	if r.disconnected.Load() {
		return ErrDisconnected
	}
	data, err := EncodeNotification(method, params)
	if err != nil {
		return err
	}
	return r.transport.WriteFrame(data)
}
