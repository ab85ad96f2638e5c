package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// EventRecorder is a shared.EventHandler that keeps every event it receives.
// Handle returns the error set with FailWith after recording the event.
type EventRecorder struct {
	types []string

	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewEventRecorder subscribes to types, or to everything when none are given.
func NewEventRecorder(types ...string) *EventRecorder {
	return &EventRecorder{types: types}
}

func (r *EventRecorder) EventTypes() []string {
	return r.types
}

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

// FailWith makes later Handle calls return err
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// Types returns the type of each recorded event, oldest first
func (r *EventRecorder) Types() []string {
	events := r.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func (r *EventRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// RequireEventCount fails the test unless the recorder holds at least n
// events before timeout.
func RequireEventCount(t *testing.T, r *EventRecorder, n int, timeout time.Duration) {
	t.Helper()
	RequireEventually(t, func() bool { return r.Count() >= n }, timeout, 5*time.Millisecond,
		"expected %d events, recorded %v", n, r.Types())
}

// NewDomainEvent builds a bare event of the given type for bus tests
func NewDomainEvent(eventType string) shared.DomainEvent {
	base := shared.NewBaseDomainEvent(eventType, "Order", uuid.New())
	return &base
}
