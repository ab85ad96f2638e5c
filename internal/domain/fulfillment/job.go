package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// Job is one asynchronous unit of fulfillment work for a single order
type Job struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"orderId"`
	ProductID  uuid.UUID `json:"productId"`
	Quantity   int       `json:"quantity"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// NewJob creates a job for the given order
func NewJob(orderID, productID uuid.UUID, quantity int) Job {
	return Job{
		ID:         uuid.New(),
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   quantity,
		EnqueuedAt: time.Now(),
	}
}

// IdempotencyKey returns the key used to de-duplicate redelivered jobs
func (j Job) IdempotencyKey() string {
	return "job:" + j.ID.String()
}

// JobHandle identifies a delivered job to its queue.
// Receipt is opaque to everything but the queue that issued it.
type JobHandle struct {
	JobID   uuid.UUID
	Receipt string
}

// Delivery pairs a consumed job with the handle used to ack or fail it
type Delivery struct {
	Job    Job
	Handle JobHandle
}
