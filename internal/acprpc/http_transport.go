// ABOUTME: HTTP transport for remote agents: POST /message, poll GET /messages every 500ms (§4.B.2)
// ABOUTME: connect() requires a 2xx from GET /; the poller tolerates transient failures silently

package acprpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nullstream/acp-go/internal/acplog"
)

const pollInterval = 500 * time.Millisecond

// secureHTTPClient mirrors the teacher's internal/http.SecureHTTPClient:
// bounded timeouts on every phase of the round trip so a hung or
// slowloris-style agent endpoint cannot wedge the host indefinitely.
func secureHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		},
	}
}

// HTTPTransport communicates with a remote agent over plain HTTP POST and
// poll, per §4.B.2. Unlike the MCP pack's Streamable-HTTP/SSE variant, ACP's
// HTTP transport has no persistent stream: the poller is the only source of
// server-initiated traffic.
type HTTPTransport struct {
	BaseURL string

	client *http.Client

	inbound   chan *Frame
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
	pollWg    sync.WaitGroup
}

// NewHTTPTransport constructs a transport targeting baseURL.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  secureHTTPClient(30 * time.Second),
	}
}

// Connect verifies reachability with a GET to the base URL and starts the poller.
func (t *HTTPTransport) Connect(ctx context.Context) error {
	if t.done != nil {
		return ErrAlreadyConnected
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("acprpc: building reachability request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("acprpc: connection failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("acprpc: connection failed: GET %s returned %d", t.BaseURL, resp.StatusCode)
	}

	t.inbound = make(chan *Frame, 64)
	t.errs = make(chan error, 1)
	t.done = make(chan struct{})

	t.pollWg.Add(1)
	go t.pollLoop()

	return nil
}

// WriteFrame POSTs one already-encoded line to <base>/message. Any frame
// present in the response body is forwarded to Inbound like a polled one.
func (t *HTTPTransport) WriteFrame(data []byte) error {
	req, err := http.NewRequest(http.MethodPost, t.BaseURL+"/message", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("acprpc: building POST: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("acprpc: POST /message failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	t.dispatchBody(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("acprpc: POST /message returned %d", resp.StatusCode)
	}
	return nil
}

// pollLoop polls GET /messages every 500ms for agent-initiated traffic and
// for responses that did not arrive inline on the POST (§4.B.2).
func (t *HTTPTransport) pollLoop() {
	defer t.pollWg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			close(t.inbound)
			return
		case <-ticker.C:
			t.poll()
		}
	}
}

func (t *HTTPTransport) poll() {
	req, err := http.NewRequest(http.MethodGet, t.BaseURL+"/messages", nil)
	if err != nil {
		return
	}
	resp, err := t.client.Do(req)
	if err != nil {
		// Transient failures are tolerated silently; the loop just retries.
		acplog.Debug("acprpc: poll failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	t.dispatchBody(body)
}

// dispatchBody accepts either a single JSON frame object or a JSON array of
// frames and classifies+forwards each.
func (t *HTTPTransport) dispatchBody(body []byte) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return
	}

	var lines [][]byte
	if trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			acplog.Warn("acprpc: malformed batch from poll: %v", err)
			return
		}
		for _, item := range arr {
			lines = append(lines, item)
		}
	} else if trimmed[0] == '{' {
		lines = append(lines, trimmed)
	} else {
		return
	}

	for _, line := range lines {
		frame, err := DecodeFrame(line)
		if err != nil {
			acplog.Warn("acprpc: dropping malformed frame: %v (%s)", err, acplog.Preview(line, 200))
			continue
		}
		select {
		case t.inbound <- frame:
		case <-t.done:
			return
		}
	}
}

// Inbound returns the channel of classified inbound frames.
func (t *HTTPTransport) Inbound() <-chan *Frame { return t.inbound }

// Errs returns the channel carrying the terminal disconnect error.
func (t *HTTPTransport) Errs() <-chan error { return t.errs }

// Disconnect stops the poller and resolves pending work with a disconnect error.
func (t *HTTPTransport) Disconnect() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.pollWg.Wait()
		select {
		case t.errs <- ErrDisconnected:
		default:
		}
		close(t.errs)
	})
	return nil
}
