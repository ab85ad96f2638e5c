package queue

import "errors"

var (
	// ErrQueueClosed is returned when enqueueing or consuming after Close
	ErrQueueClosed = errors.New("job queue closed")
	// ErrAlreadyConsuming is returned when a second consumer attaches to a queue
	ErrAlreadyConsuming = errors.New("job queue already has a consumer")
	// ErrUnknownDelivery is returned when acking or failing a handle the queue did not issue
	ErrUnknownDelivery = errors.New("unknown delivery handle")
	// ErrQueueFull is returned when a bounded queue has no room left
	ErrQueueFull = errors.New("job queue full")
)

// FailedJob is the record kept for a job that ended in failure
type FailedJob struct {
	Payload  string `json:"payload"`
	Reason   string `json:"reason"`
	FailedAt int64  `json:"failedAt"` // unix millis
}
