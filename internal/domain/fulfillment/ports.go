package fulfillment

import "context"

// Real-time event names delivered to connected clients
const (
	EventOrderCompleted = "orderCompleted"
	EventOrderFailed    = "orderFailed"
)

// JobQueue is a durable queue with at-least-once delivery and a single
// active consumer per job.
type JobQueue interface {
	// Enqueue submits a job
	Enqueue(ctx context.Context, job Job) (JobHandle, error)

	// Consume returns deliveries until ctx is cancelled, then closes the channel
	Consume(ctx context.Context) (<-chan Delivery, error)

	// Ack removes a delivered job permanently
	Ack(ctx context.Context, handle JobHandle) error

	// Fail removes a delivered job and records it as failed. Failed jobs
	// are not redelivered.
	Fail(ctx context.Context, handle JobHandle, reason string) error

	// Len returns the number of jobs waiting for delivery
	Len(ctx context.Context) (int64, error)

	// Close releases queue resources
	Close() error
}

// Broadcaster delivers an event to every currently connected client.
// Delivery is best-effort with no persistence or replay.
type Broadcaster interface {
	Broadcast(ctx context.Context, event string, payload any) error
}

// Fulfiller performs the external part of fulfilling a job, such as a
// payment or warehouse call. It runs before any inventory mutation.
type Fulfiller interface {
	Fulfill(ctx context.Context, job Job) error
}
