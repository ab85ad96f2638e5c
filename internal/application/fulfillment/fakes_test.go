package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// orderStore keeps order rows by value so that callers never share memory
// with the stored state.
type orderStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]trade.Order
	failOn    map[trade.OrderStatus]error
	markError error

	// findErrors are returned by successive FindByID calls before rows
	// are consulted
	findErrors []error
}

func newOrderStore() *orderStore {
	return &orderStore{
		rows:   make(map[uuid.UUID]trade.Order),
		failOn: make(map[trade.OrderStatus]error),
	}
}

func (s *orderStore) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.findErrors) > 0 {
		err := s.findErrors[0]
		s.findErrors = s.findErrors[1:]
		return nil, err
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	row.ClearDomainEvents()
	return &row, nil
}

func (s *orderStore) Save(_ context.Context, order *trade.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[order.ID] = *order
	return nil
}

func (s *orderStore) UpdateStatus(_ context.Context, order *trade.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[order.Status]; err != nil {
		return err
	}
	row, ok := s.rows[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	row.Status = order.Status
	row.UpdatedAt = order.UpdatedAt
	s.rows[order.ID] = row
	return nil
}

func (s *orderStore) MarkFailed(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markError != nil {
		return s.markError
	}
	row, ok := s.rows[id]
	if !ok || row.Status.IsTerminal() {
		return shared.ErrNotFound
	}
	row.Status = trade.OrderStatusFailed
	row.UpdatedAt = at
	s.rows[id] = row
	return nil
}

func (s *orderStore) setStatus(id uuid.UUID, status trade.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[id]
	row.Status = status
	s.rows[id] = row
}

func (s *orderStore) CountPendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, row := range s.rows {
		if row.Status == trade.OrderStatusPending && row.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *orderStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[uuid.UUID]trade.Order)
	return nil
}

func (s *orderStore) status(id uuid.UUID) trade.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id].Status
}

type productStore struct {
	mu           sync.Mutex
	rows         map[uuid.UUID]catalog.Product
	decrementErr error
}

func newProductStore(products ...*catalog.Product) *productStore {
	s := &productStore{rows: make(map[uuid.UUID]catalog.Product)}
	for _, p := range products {
		s.rows[p.ID] = *p
	}
	return s
}

func (s *productStore) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &row, nil
}

func (s *productStore) FindAll(context.Context, catalog.ProductFilter) ([]catalog.Product, error) {
	return nil, nil
}

func (s *productStore) Count(context.Context, catalog.ProductFilter) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *productStore) Save(_ context.Context, product *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[product.ID] = *product
	return nil
}

func (s *productStore) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	for _, p := range products {
		_ = s.Save(ctx, p)
	}
	return nil
}

func (s *productStore) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decrementErr != nil {
		return false, s.decrementErr
	}
	row, ok := s.rows[id]
	if !ok {
		return false, nil
	}
	row.Stock -= quantity
	s.rows[id] = row
	return true, nil
}

func (s *productStore) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[uuid.UUID]catalog.Product)
	return nil
}

func (s *productStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id].Stock
}

func (s *productStore) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
}

type broadcastRecord struct {
	Event   string
	Payload any
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	records []broadcastRecord
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, broadcastRecord{Event: event, Payload: payload})
	return nil
}

func (b *recordingBroadcaster) all() []broadcastRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastRecord(nil), b.records...)
}

type fulfillerFunc func(ctx context.Context, job fulfillment.Job) error

func (f fulfillerFunc) Fulfill(ctx context.Context, job fulfillment.Job) error {
	return f(ctx, job)
}

var instantFulfiller = fulfillerFunc(func(context.Context, fulfillment.Job) error { return nil })

// chanQueue is a minimal in-process queue recording how deliveries were settled
type chanQueue struct {
	ch     chan fulfillment.Delivery
	mu     sync.Mutex
	acked  []uuid.UUID
	failed map[uuid.UUID]string
}

func newChanQueue() *chanQueue {
	return &chanQueue{
		ch:     make(chan fulfillment.Delivery, 16),
		failed: make(map[uuid.UUID]string),
	}
}

func (q *chanQueue) Enqueue(_ context.Context, job fulfillment.Job) (fulfillment.JobHandle, error) {
	h := fulfillment.JobHandle{JobID: job.ID, Receipt: job.ID.String()}
	q.ch <- fulfillment.Delivery{Job: job, Handle: h}
	return h, nil
}

func (q *chanQueue) Consume(ctx context.Context) (<-chan fulfillment.Delivery, error) {
	out := make(chan fulfillment.Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-q.ch:
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (q *chanQueue) Ack(_ context.Context, h fulfillment.JobHandle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, h.JobID)
	return nil
}

func (q *chanQueue) Fail(_ context.Context, h fulfillment.JobHandle, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[h.JobID] = reason
	return nil
}

func (q *chanQueue) Len(context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}

func (q *chanQueue) Close() error { return nil }

func (q *chanQueue) ackCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked)
}

func (q *chanQueue) failCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.failed)
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memoryIdempotency) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = make(map[string]bool)
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryIdempotency) IsProcessed(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *memoryIdempotency) Close() error { return nil }
