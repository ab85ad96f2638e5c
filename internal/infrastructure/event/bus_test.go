package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryEventBus_Publish(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event := testutil.NewDomainEvent("TestEvent")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, 1, handler.Count())
	assert.Equal(t, event, handler.Events()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event1 := testutil.NewDomainEvent("TestEvent")
	event2 := testutil.NewDomainEvent("TestEvent")
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Equal(t, 2, handler.Count())
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler1 := testutil.NewEventRecorder("TestEvent")
	handler2 := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(handler1, "TestEvent")
	bus.Subscribe(handler2, "TestEvent")

	event := testutil.NewDomainEvent("TestEvent")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, 1, handler1.Count())
	assert.Equal(t, 1, handler2.Count())
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	wildcardHandler := testutil.NewEventRecorder() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	event := testutil.NewDomainEvent("AnyEventType")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, 1, wildcardHandler.Count())
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler1 := testutil.NewEventRecorder("TestEvent")
	handler1.FailWith(errors.New("handler error"))
	handler2 := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(handler1, "TestEvent")
	bus.Subscribe(handler2, "TestEvent")

	event := testutil.NewDomainEvent("TestEvent")
	err := bus.Publish(context.Background(), event)

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Equal(t, 1, handler1.Count())
	assert.Equal(t, 1, handler2.Count())
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := testutil.NewEventRecorder("OtherEvent")
	bus.Subscribe(handler, "OtherEvent")

	event := testutil.NewDomainEvent("TestEvent")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, 0, handler.Count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event1 := testutil.NewDomainEvent("TestEvent")
	_ = bus.Publish(context.Background(), event1)
	assert.Equal(t, 1, handler.Count())

	bus.Unsubscribe(handler)

	event2 := testutil.NewDomainEvent("TestEvent")
	_ = bus.Publish(context.Background(), event2)
	assert.Equal(t, 1, handler.Count()) // Still 1, not 2
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(handler)

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, testutil.NewDomainEvent("TestEvent")))
	assert.Equal(t, 1, handler.Count())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))

	err := bus.Publish(ctx, testutil.NewDomainEvent("TestEvent"))
	assert.ErrorIs(t, err, ErrBusStopped)
	assert.Equal(t, 1, handler.Count())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, testutil.NewDomainEvent("TestEvent")))
	assert.Equal(t, 2, handler.Count())
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panicHandler) EventTypes() []string                           { return []string{"TestEvent"} }

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	after := testutil.NewEventRecorder("TestEvent")
	bus.Subscribe(panicHandler{})
	bus.Subscribe(after)

	require.NoError(t, bus.Publish(context.Background(), testutil.NewDomainEvent("TestEvent")))

	assert.Equal(t, 1, after.Count())
	assert.Equal(t, int64(1), bus.Failures())
}

func TestInMemoryEventBus_Publish_CountsFailures(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := testutil.NewEventRecorder("TestEvent")
	failing.FailWith(errors.New("boom"))
	bus.Subscribe(failing)

	_ = bus.Publish(context.Background(), testutil.NewDomainEvent("TestEvent"), testutil.NewDomainEvent("TestEvent"))
	assert.Equal(t, int64(2), bus.Failures())
}
