// ABOUTME: Fans out streaming updates to secondary subscribers alongside the primary Delegate
// ABOUTME: subscriberSet is a SessionUpdate-specific subscriber registry, not a generic pub/sub

package acp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nullstream/acp-go/internal/acpsession"
	"github.com/nullstream/acp-go/internal/acptools"
)

// subscriberSet holds the secondary observers registered through
// Client.Subscribe. Unlike the primary Delegate, a subscriber only ever
// sees SessionUpdate values and cannot answer permission/fs/tool hooks.
type subscriberSet struct {
	mu        sync.RWMutex
	observers map[int]func(acpsession.SessionUpdate)
	nextID    int
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{observers: make(map[int]func(acpsession.SessionUpdate))}
}

// add registers handler and returns a func that removes it.
func (s *subscriberSet) add(handler func(acpsession.SessionUpdate)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify delivers update to every currently registered observer. Observers
// are snapshotted before delivery so a handler may unsubscribe itself
// without deadlocking.
func (s *subscriberSet) notify(update acpsession.SessionUpdate) {
	s.mu.RLock()
	snapshot := make([]func(acpsession.SessionUpdate), 0, len(s.observers))
	for _, h := range s.observers {
		snapshot = append(snapshot, h)
	}
	s.mu.RUnlock()

	for _, h := range snapshot {
		h(update)
	}
}

// fanoutDelegate wraps the application's Delegate so additional observers
// (Client.Subscribe) see every streaming update the primary delegate sees,
// without themselves having to implement the full Delegate contract.
type fanoutDelegate struct {
	inner       Delegate
	subscribers *subscriberSet
}

func newFanoutDelegate(inner Delegate) *fanoutDelegate {
	if inner == nil {
		inner = acpsession.DefaultDelegate{}
	}
	return &fanoutDelegate{inner: inner, subscribers: newSubscriberSet()}
}

func (f *fanoutDelegate) OnUpdate(update acpsession.SessionUpdate) {
	f.inner.OnUpdate(update)
	f.subscribers.notify(update)
}

func (f *fanoutDelegate) ChoosePermission(ctx context.Context, req acpsession.RequestPermissionRequest) (acpsession.PermissionOptionId, error) {
	return f.inner.ChoosePermission(ctx, req)
}

func (f *fanoutDelegate) ReadFile(ctx context.Context, path string) (string, error) {
	return f.inner.ReadFile(ctx, path)
}

func (f *fanoutDelegate) WriteFile(ctx context.Context, path string, content string) error {
	return f.inner.WriteFile(ctx, path, content)
}

func (f *fanoutDelegate) ListTools(ctx context.Context) ([]acptools.ToolDefinition, error) {
	return f.inner.ListTools(ctx)
}

func (f *fanoutDelegate) CallTool(ctx context.Context, name string, arguments json.RawMessage) (acptools.CallToolResponse, error) {
	return f.inner.CallTool(ctx, name, arguments)
}

// Subscribe registers handler to receive every SessionUpdate the primary
// delegate's OnUpdate hook receives, in the same order. The returned func
// removes the subscription. Useful for a secondary observer — a log
// sink, a second UI surface — that should not have to implement the rest
// of the Delegate contract.
func (c *Client) Subscribe(handler func(SessionUpdate)) (unsubscribe func()) {
	return c.fanout.subscribers.add(handler)
}
