// ABOUTME: Tests for Router correlation: monotonic ids, unknown-id discard, disconnect resolution

package acprpc

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeTransport is a minimal in-memory Transport for Router tests, grounded
// on the teacher's internal/mcp fakeTransport/mockTransport test doubles.
type fakeTransport struct {
	mu      sync.Mutex
	written [][]byte
	inbound chan *Frame
	errs    chan error
	closed  bool
	seen    int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound: make(chan *Frame, 16),
		errs:    make(chan error, 1),
	}
}

func (f *fakeTransport) Connect(ctx context.Context) error { return nil }

func (f *fakeTransport) WriteFrame(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), data...)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeTransport) Inbound() <-chan *Frame { return f.inbound }
func (f *fakeTransport) Errs() <-chan error     { return f.errs }

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.inbound)
	}
	return nil
}

func (f *fakeTransport) lastWrittenID(t *testing.T) RequestId {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		t.Fatal("no frame written yet")
	}
	var probe struct {
		ID RequestId `json:"id"`
	}
	if err := json.Unmarshal(f.written[len(f.written)-1], &probe); err != nil {
		t.Fatalf("unmarshal written frame: %v", err)
	}
	return probe.ID
}

func TestRouter_OutboundIdsMonotonicStringsFromOne(t *testing.T) {
	ft := newFakeTransport()
	r := NewRouter(ft, false)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
		go func() {
			id := ft.lastWrittenIDEventually(t)
			resp, _ := EncodeResponse(id, json.RawMessage(`{}`))
			frame, err := DecodeFrame(resp)
			if err != nil {
				t.Errorf("decode response: %v", err)
				return
			}
			ft.inbound <- frame
		}()

		_, err := r.SendRequest(context.Background(), "noop", nil)
		if err != nil {
			t.Fatalf("SendRequest: %v", err)
		}

		id := ft.lastWrittenID(t)
		if !id.IsString() || id.Str() != strconv.FormatInt(want, 10) {
			t.Errorf("request %d: id = %v, want string %q", want, id, strconv.FormatInt(want, 10))
		}
	}
}

// lastWrittenIDEventually polls briefly for a frame written since its
// previous call, avoiding a fixed sleep in the concurrent responder
// goroutine above.
func (f *fakeTransport) lastWrittenIDEventually(t *testing.T) RequestId {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		fresh := len(f.written) > f.seen
		if fresh {
			f.seen = len(f.written)
		}
		f.mu.Unlock()
		if fresh {
			return f.lastWrittenID(t)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a written frame")
	return RequestId{}
}

func TestRouter_UnknownResponseIdDiscarded(t *testing.T) {
	ft := newFakeTransport()
	r := NewRouter(ft, false)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	resp, _ := EncodeResponse(IntRequestId(999), json.RawMessage(`{}`))
	frame, err := DecodeFrame(resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Should not panic, and should not resolve any live caller.
	ft.inbound <- frame

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = r.SendRequest(ctx, "ping", nil)
	if err == nil {
		t.Error("expected SendRequest to time out: the stray response for id 999 must not resolve it")
	}
}

func TestRouter_DisconnectResolvesAllPending(t *testing.T) {
	ft := newFakeTransport()
	r := NewRouter(ft, false)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.SendRequest(context.Background(), "hang", nil)
		done <- err
	}()

	// Give SendRequest time to park on the pending map.
	time.Sleep(20 * time.Millisecond)

	if err := r.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected disconnect error, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SendRequest did not resolve after Disconnect")
	}

	if _, err := r.SendRequest(context.Background(), "after-disconnect", nil); err == nil {
		t.Error("expected error calling SendRequest after disconnect")
	}
}

func TestRouter_UnknownInboundMethodNotFound(t *testing.T) {
	ft := newFakeTransport()
	r := NewRouter(ft, false)
	r.SetHandlers(nil, nil, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	req := wireRequestForTest(t, IntRequestId(7), "bogus/method")
	frame, err := DecodeFrame(req)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ft.inbound <- frame

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
		t.Fatal("no error response written")
	}
	var resp struct {
		Error *RPCError `json:"error"`
	}
	if err := json.Unmarshal(ft.written[len(ft.written)-1], &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("expected methodNotFound error, got %+v", resp.Error)
	}
}

func wireRequestForTest(t *testing.T, id RequestId, method string) []byte {
	t.Helper()
	data, err := EncodeRequest(id, method, nil)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	return data
}
