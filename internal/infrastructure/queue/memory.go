package queue

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storefront/backend/internal/domain/fulfillment"
)

// MemoryQueue is an in-process JobQueue. Jobs survive neither a restart nor
// a crash, so it backs tests and deployments without Redis.
type MemoryQueue struct {
	mu        sync.Mutex
	backlog   []fulfillment.Job
	inFlight  map[string]fulfillment.Job
	failed    []FailedJob
	notify    chan struct{}
	consuming bool
	closed    bool
	seq       atomic.Uint64
	capacity  int
}

// NewMemoryQueue creates a MemoryQueue holding at most capacity waiting
// jobs. A non-positive capacity means unbounded.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		inFlight: make(map[string]fulfillment.Job),
		notify:   make(chan struct{}, 1),
		capacity: capacity,
	}
}

// Enqueue appends the job to the backlog
func (q *MemoryQueue) Enqueue(ctx context.Context, job fulfillment.Job) (fulfillment.JobHandle, error) {
	if err := ctx.Err(); err != nil {
		return fulfillment.JobHandle{}, err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fulfillment.JobHandle{}, ErrQueueClosed
	}
	if q.capacity > 0 && len(q.backlog) >= q.capacity {
		q.mu.Unlock()
		return fulfillment.JobHandle{}, ErrQueueFull
	}
	q.backlog = append(q.backlog, job)
	q.mu.Unlock()

	q.wake()
	return fulfillment.JobHandle{JobID: job.ID}, nil
}

// Consume starts the single consumer. The returned channel is unbuffered
// so a job leaves the backlog only when the consumer is ready for it.
func (q *MemoryQueue) Consume(ctx context.Context) (<-chan fulfillment.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	if q.consuming {
		return nil, ErrAlreadyConsuming
	}
	q.consuming = true

	out := make(chan fulfillment.Delivery)
	go q.broker(ctx, out)
	return out, nil
}

func (q *MemoryQueue) broker(ctx context.Context, out chan<- fulfillment.Delivery) {
	defer func() {
		q.mu.Lock()
		q.consuming = false
		q.mu.Unlock()
		close(out)
	}()

	for {
		job, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.notify:
				continue
			}
		}

		receipt := strconv.FormatUint(q.seq.Add(1), 10)
		q.mu.Lock()
		q.inFlight[receipt] = job
		q.mu.Unlock()

		delivery := fulfillment.Delivery{
			Job:    job,
			Handle: fulfillment.JobHandle{JobID: job.ID, Receipt: receipt},
		}
		select {
		case out <- delivery:
		case <-ctx.Done():
			q.requeue(receipt, job)
			return
		}
	}
}

func (q *MemoryQueue) pop() (fulfillment.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) == 0 {
		return fulfillment.Job{}, false
	}
	job := q.backlog[0]
	q.backlog = q.backlog[1:]
	return job, true
}

// requeue puts an undelivered job back at the head of the backlog
func (q *MemoryQueue) requeue(receipt string, job fulfillment.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, receipt)
	q.backlog = append([]fulfillment.Job{job}, q.backlog...)
}

func (q *MemoryQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Ack removes a delivered job
func (q *MemoryQueue) Ack(_ context.Context, handle fulfillment.JobHandle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inFlight[handle.Receipt]; !ok {
		return ErrUnknownDelivery
	}
	delete(q.inFlight, handle.Receipt)
	return nil
}

// Fail removes a delivered job and records it as failed
func (q *MemoryQueue) Fail(_ context.Context, handle fulfillment.JobHandle, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inFlight[handle.Receipt]; !ok {
		return ErrUnknownDelivery
	}
	delete(q.inFlight, handle.Receipt)
	q.failed = append(q.failed, FailedJob{
		Payload:  handle.JobID.String(),
		Reason:   reason,
		FailedAt: time.Now().UnixMilli(),
	})
	return nil
}

// Len returns the number of jobs waiting for delivery
func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.backlog)), nil
}

// InFlight returns the number of delivered but unsettled jobs
func (q *MemoryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inFlight)
}

// Failed returns a copy of the failed job records
func (q *MemoryQueue) Failed() []FailedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]FailedJob(nil), q.failed...)
}

// Close rejects further enqueues. Waiting jobs are dropped.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

var _ fulfillment.JobQueue = (*MemoryQueue)(nil)
