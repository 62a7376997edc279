// ABOUTME: Tests that Client.Subscribe observes the same updates as the primary delegate

package acp

import (
	"sync"
	"testing"

	"github.com/nullstream/acp-go/internal/acpsession"
)

type countingDelegate struct {
	DefaultDelegate
	mu    sync.Mutex
	count int
}

func (d *countingDelegate) OnUpdate(acpsession.SessionUpdate) {
	d.mu.Lock()
	d.count++
	d.mu.Unlock()
}

func TestClient_SubscribeSeesDelegateUpdates(t *testing.T) {
	ft := newFakeTransport()
	delegate := &countingDelegate{}
	c := newClient(ft, WithDelegate(delegate))

	var mu sync.Mutex
	var received []SessionUpdate
	unsubscribe := c.Subscribe(func(u SessionUpdate) {
		mu.Lock()
		received = append(received, u)
		mu.Unlock()
	})
	defer unsubscribe()

	update := acpsession.SessionUpdate{SessionID: "s1", MessageChunks: []acpsession.ContentChunk{{Type: acpsession.ContentText, Text: "hi"}}}
	c.fanout.OnUpdate(update)

	delegate.mu.Lock()
	gotCount := delegate.count
	delegate.mu.Unlock()
	if gotCount != 1 {
		t.Errorf("expected primary delegate to observe 1 update, got %d", gotCount)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0].MessageChunks[0].Text != "hi" {
		t.Errorf("expected subscriber to observe the same update, got %+v", received)
	}
}

func TestClient_Unsubscribe(t *testing.T) {
	ft := newFakeTransport()
	c := newClient(ft)

	calls := 0
	unsubscribe := c.Subscribe(func(SessionUpdate) { calls++ })
	unsubscribe()

	c.fanout.OnUpdate(acpsession.SessionUpdate{SessionID: "s1"})
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}
