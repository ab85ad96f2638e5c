package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"go.uber.org/zap"
)

// RedisQueue is a reliable JobQueue on Redis lists. Enqueue pushes onto the
// pending list; delivery atomically moves the payload to the processing
// list with BLMOVE, and Ack or Fail removes it from there. Payloads left in
// the processing list by a crashed consumer are moved back to pending when
// the next consumer starts.
type RedisQueue struct {
	client       *redis.Client
	name         string
	blockTimeout time.Duration
	logger       *zap.Logger

	mu        sync.Mutex
	consuming bool
	closed    bool
}

// NewRedisQueue creates a RedisQueue using keys prefixed with name
func NewRedisQueue(client *redis.Client, name string, blockTimeout time.Duration, logger *zap.Logger) *RedisQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blockTimeout <= 0 {
		blockTimeout = 5 * time.Second
	}
	return &RedisQueue{
		client:       client,
		name:         name,
		blockTimeout: blockTimeout,
		logger:       logger.Named("redis_queue"),
	}
}

func (q *RedisQueue) pendingKey() string    { return q.name + ":pending" }
func (q *RedisQueue) processingKey() string { return q.name + ":processing" }
func (q *RedisQueue) failedKey() string     { return q.name + ":failed" }

// Enqueue pushes the JSON encoded job onto the pending list
func (q *RedisQueue) Enqueue(ctx context.Context, job fulfillment.Job) (fulfillment.JobHandle, error) {
	if q.isClosed() {
		return fulfillment.JobHandle{}, ErrQueueClosed
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fulfillment.JobHandle{}, fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.pendingKey(), payload).Err(); err != nil {
		return fulfillment.JobHandle{}, fmt.Errorf("push job: %w", err)
	}
	return fulfillment.JobHandle{JobID: job.ID, Receipt: string(payload)}, nil
}

// Consume recovers orphaned deliveries and starts the consumer loop
func (q *RedisQueue) Consume(ctx context.Context) (<-chan fulfillment.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	if q.consuming {
		return nil, ErrAlreadyConsuming
	}

	recovered, err := q.recoverInFlight(ctx)
	if err != nil {
		return nil, err
	}
	if recovered > 0 {
		q.logger.Warn("Requeued jobs left in processing by a previous consumer", zap.Int("count", recovered))
	}

	q.consuming = true
	out := make(chan fulfillment.Delivery)
	go q.loop(ctx, out)
	return out, nil
}

// recoverInFlight moves every processing payload back to the consuming end
// of the pending list, oldest first
func (q *RedisQueue) recoverInFlight(ctx context.Context) (int, error) {
	count := 0
	for {
		err := q.client.LMove(ctx, q.processingKey(), q.pendingKey(), "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("recover in-flight jobs: %w", err)
		}
		count++
	}
}

func (q *RedisQueue) loop(ctx context.Context, out chan<- fulfillment.Delivery) {
	defer func() {
		q.mu.Lock()
		q.consuming = false
		q.mu.Unlock()
		close(out)
	}()

	for ctx.Err() == nil {
		payload, err := q.client.BLMove(ctx, q.pendingKey(), q.processingKey(), "RIGHT", "LEFT", q.blockTimeout).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.logger.Error("Failed to read from job queue", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}

		var job fulfillment.Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			q.logger.Error("Discarding undecodable job", zap.String("payload", payload), zap.Error(err))
			_ = q.fail(context.WithoutCancel(ctx), payload, "undecodable payload: "+err.Error())
			continue
		}

		delivery := fulfillment.Delivery{
			Job:    job,
			Handle: fulfillment.JobHandle{JobID: job.ID, Receipt: payload},
		}
		select {
		case out <- delivery:
		case <-ctx.Done():
			// Left in processing; the next consumer requeues it.
			return
		}
	}
}

// Ack removes a delivered job from the processing list
func (q *RedisQueue) Ack(ctx context.Context, handle fulfillment.JobHandle) error {
	removed, err := q.client.LRem(ctx, q.processingKey(), 1, handle.Receipt).Result()
	if err != nil {
		return fmt.Errorf("ack job %s: %w", handle.JobID, err)
	}
	if removed == 0 {
		return ErrUnknownDelivery
	}
	return nil
}

// Fail moves a delivered job from the processing list to the failed list
func (q *RedisQueue) Fail(ctx context.Context, handle fulfillment.JobHandle, reason string) error {
	if err := q.fail(ctx, handle.Receipt, reason); err != nil {
		return fmt.Errorf("fail job %s: %w", handle.JobID, err)
	}
	return nil
}

func (q *RedisQueue) fail(ctx context.Context, payload, reason string) error {
	record, err := json.Marshal(FailedJob{Payload: payload, Reason: reason, FailedAt: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey(), 1, payload)
		pipe.LPush(ctx, q.failedKey(), record)
		return nil
	})
	return err
}

// Len returns the number of jobs waiting for delivery
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.pendingKey()).Result()
}

// Failed returns up to limit failed job records, newest first
func (q *RedisQueue) Failed(ctx context.Context, limit int64) ([]FailedJob, error) {
	raw, err := q.client.LRange(ctx, q.failedKey(), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]FailedJob, 0, len(raw))
	for _, r := range raw {
		var rec FailedJob
		if err := json.Unmarshal([]byte(r), &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Close rejects further enqueues. The Redis client is owned by the caller.
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

func (q *RedisQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

var _ fulfillment.JobQueue = (*RedisQueue)(nil)
