// ABOUTME: End-to-end seed scenarios against a fake Transport (§8 "End-to-end scenarios")

package acpsession

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nullstream/acp-go/internal/acprpc"
)

// fakeTransport is a minimal in-memory acprpc.Transport, the same shape as
// the one acprpc's own router tests use.
type fakeTransport struct {
	mu      sync.Mutex
	written [][]byte
	inbound chan *acprpc.Frame
	errs    chan error
	closed  bool
	seen    int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound: make(chan *acprpc.Frame, 64),
		errs:    make(chan error, 1),
	}
}

func (f *fakeTransport) Connect(ctx context.Context) error { return nil }

func (f *fakeTransport) WriteFrame(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeTransport) Inbound() <-chan *acprpc.Frame { return f.inbound }
func (f *fakeTransport) Errs() <-chan error             { return f.errs }

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.inbound)
	}
	return nil
}

// lastRequest waits for a frame written since its previous call and returns
// the newest one.
func (f *fakeTransport) lastRequest(t *testing.T) (acprpc.RequestId, string, json.RawMessage) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		fresh := len(f.written) > f.seen
		f.mu.Unlock()
		if fresh {
			break
		}
		time.Sleep(time.Millisecond)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) <= f.seen {
		t.Fatal("no new frame written")
	}
	f.seen = len(f.written)
	var probe struct {
		ID     acprpc.RequestId `json:"id"`
		Method string           `json:"method"`
		Params json.RawMessage  `json:"params"`
	}
	if err := json.Unmarshal(f.written[len(f.written)-1], &probe); err != nil {
		t.Fatalf("unmarshal last written: %v", err)
	}
	return probe.ID, probe.Method, probe.Params
}

func (f *fakeTransport) respond(t *testing.T, id acprpc.RequestId, result json.RawMessage) {
	t.Helper()
	data, err := acprpc.EncodeResponse(id, result)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	frame, err := acprpc.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	f.inbound <- frame
}

func (f *fakeTransport) pushNotification(t *testing.T, method string, params json.RawMessage) {
	t.Helper()
	data, err := acprpc.EncodeNotification(method, params)
	if err != nil {
		t.Fatalf("EncodeNotification: %v", err)
	}
	frame, err := acprpc.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	f.inbound <- frame
}

func (f *fakeTransport) pushRequest(t *testing.T, id acprpc.RequestId, method string, params json.RawMessage) {
	t.Helper()
	data, err := acprpc.EncodeRequest(id, method, params)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	frame, err := acprpc.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	f.inbound <- frame
}

type recordingDelegate struct {
	DefaultDelegate
	mu      sync.Mutex
	updates []SessionUpdate
	choice  PermissionOptionId
}

func (d *recordingDelegate) OnUpdate(u SessionUpdate) {
	d.mu.Lock()
	d.updates = append(d.updates, u)
	d.mu.Unlock()
}

func (d *recordingDelegate) ChoosePermission(ctx context.Context, req RequestPermissionRequest) (PermissionOptionId, error) {
	return d.choice, nil
}

func newTestEngine(delegate Delegate) (*Engine, *fakeTransport) {
	ft := newFakeTransport()
	router := acprpc.NewRouter(ft, false)
	e := NewEngine(router, delegate, EngineOptions{BatchingEnabled: true, BatchWindowMillis: 20})
	return e, ft
}

func TestEngine_InitializeRoundTrip(t *testing.T) {
	e, ft := newTestEngine(&recordingDelegate{})

	done := make(chan *InitializeResponse, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := e.Connect(context.Background())
		if err != nil {
			errCh <- err
			return
		}
		done <- resp
	}()

	id, method, _ := ft.lastRequest(t)
	if method != "initialize" {
		t.Fatalf("expected initialize request, got %q", method)
	}
	ft.respond(t, id, json.RawMessage(`{"protocolVersion":1,"agentCapabilities":{"loadSession":true,"promptCapabilities":{"image":true}},"agentInfo":{"name":"A","version":"9"}}`))

	select {
	case err := <-errCh:
		t.Fatalf("Connect failed: %v", err)
	case resp := <-done:
		if resp.AgentInfo.Name != "A" {
			t.Errorf("AgentInfo.Name = %q", resp.AgentInfo.Name)
		}
		if !resp.AgentCapabilities.LoadSession {
			t.Error("expected LoadSession capability true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not resolve")
	}
}

func TestEngine_PermissionRoundTrip(t *testing.T) {
	delegate := &recordingDelegate{choice: "allow_once"}
	e, ft := newTestEngine(delegate)
	if err := e.router.Connect(context.Background()); err != nil {
		t.Fatalf("router.Connect: %v", err)
	}

	ft.pushRequest(t, acprpc.StringRequestId("42"), "session/request_permission", json.RawMessage(`{"options":[{"optionId":"allow_once","name":"Allow","kind":"allow_once"},{"optionId":"reject_once","name":"Deny","kind":"reject_once"}]}`))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ft.mu.Lock()
		n := len(ft.written)
		ft.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	if len(ft.written) == 0 {
		t.Fatal("no response written for session/request_permission")
	}
	var resp struct {
		ID     string `json:"id"`
		Result struct {
			Outcome struct {
				Outcome  string `json:"outcome"`
				OptionID string `json:"optionId"`
			} `json:"outcome"`
		} `json:"result"`
	}
	if err := json.Unmarshal(ft.written[0], &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "42" || resp.Result.Outcome.Outcome != "selected" || resp.Result.Outcome.OptionID != "allow_once" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestEngine_UnknownInboundMethod(t *testing.T) {
	e, ft := newTestEngine(&recordingDelegate{})
	if err := e.router.Connect(context.Background()); err != nil {
		t.Fatalf("router.Connect: %v", err)
	}

	ft.pushRequest(t, acprpc.StringRequestId("7"), "bogus/method", json.RawMessage(`{}`))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ft.mu.Lock()
		n := len(ft.written)
		ft.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	var resp struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(ft.written[0], &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != acprpc.CodeMethodNotFound {
		t.Errorf("expected methodNotFound, got %+v", resp.Error)
	}
}

func TestEngine_PromptWithCancel(t *testing.T) {
	delegate := &recordingDelegate{}
	e, ft := newTestEngine(delegate)

	initDone := make(chan struct{})
	go func() {
		e.Connect(context.Background())
		close(initDone)
	}()
	id, _, _ := ft.lastRequest(t)
	ft.respond(t, id, json.RawMessage(`{"protocolVersion":1,"agentCapabilities":{},"agentInfo":{"name":"A","version":"1"}}`))
	<-initDone

	sessionDone := make(chan struct{})
	go func() {
		e.NewSession(context.Background(), "/tmp", nil, "", nil)
		close(sessionDone)
	}()
	id, method, _ := ft.lastRequest(t)
	if method != "session/new" {
		t.Fatalf("expected session/new, got %q", method)
	}
	ft.respond(t, id, json.RawMessage(`{"sessionId":"s1"}`))
	<-sessionDone

	promptResult := make(chan *PromptResponse, 1)
	go func() {
		resp, err := e.Prompt(context.Background(), []ContentChunk{{Type: ContentText, Text: "hi"}})
		if err != nil {
			t.Errorf("Prompt: %v", err)
			return
		}
		promptResult <- resp
	}()

	promptID, method, _ := ft.lastRequest(t)
	if method != "session/prompt" {
		t.Fatalf("expected session/prompt, got %q", method)
	}

	for _, text := range []string{"a", "b", "c"} {
		ft.pushNotification(t, "session/update", json.RawMessage(`{"sessionId":"s1","sessionUpdate":"agent_message_chunk","content":{"type":"text","text":"`+text+`"}}`))
	}

	if err := e.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	ft.respond(t, promptID, json.RawMessage(`{"stopReason":"cancelled"}`))

	select {
	case resp := <-promptResult:
		if resp.StopReason != StopCancelled {
			t.Errorf("StopReason = %q, want cancelled", resp.StopReason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Prompt did not resolve")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		delegate.mu.Lock()
		n := len(delegate.updates)
		delegate.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	delegate.mu.Lock()
	defer delegate.mu.Unlock()
	if len(delegate.updates) != 1 || len(delegate.updates[0].MessageChunks) != 3 {
		t.Fatalf("expected one batched delivery of 3 chunks, got %+v", delegate.updates)
	}
}

func TestEngine_PromptWithoutSessionFails(t *testing.T) {
	e, _ := newTestEngine(&recordingDelegate{})
	if _, err := e.Prompt(context.Background(), nil); err != ErrNoActiveSession {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}
