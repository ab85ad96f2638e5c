package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrWorkerAlreadyRunning is returned by Start when the worker is running
var ErrWorkerAlreadyRunning = errors.New("fulfillment worker already running")

// WorkerConfig holds the worker's collaborators
type WorkerConfig struct {
	Queue       fulfillment.JobQueue
	Orders      trade.OrderRepository
	Products    catalog.ProductRepository
	Fulfiller   fulfillment.Fulfiller
	Broadcaster fulfillment.Broadcaster
	Logger      *zap.Logger

	// Idempotency is optional. When set, a job whose key was already
	// recorded is acknowledged without being processed again.
	Idempotency       shared.IdempotencyStore
	IdempotencyConfig shared.IdempotencyConfig
}

// Worker consumes fulfillment jobs one at a time and drives each order
// through processing to a terminal state.
type Worker struct {
	queue          fulfillment.JobQueue
	orders         trade.OrderRepository
	products       catalog.ProductRepository
	fulfiller      fulfillment.Fulfiller
	broadcaster    fulfillment.Broadcaster
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewWorker creates a new Worker
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idemConfig := cfg.IdempotencyConfig
	if idemConfig.TTL <= 0 {
		idemConfig = shared.DefaultIdempotencyConfig()
	}
	return &Worker{
		queue:       cfg.Queue,
		orders:      cfg.Orders,
		products:    cfg.Products,
		fulfiller:   cfg.Fulfiller,
		broadcaster: cfg.Broadcaster,
		idempotency: cfg.Idempotency,
		idemConfig:  idemConfig,
		logger:      logger.With(zap.String("component", "fulfillment_worker")),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (w *Worker) SetEventPublisher(publisher shared.EventPublisher) {
	w.eventPublisher = publisher
}

// Start begins consuming in a background goroutine
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running.CompareAndSwap(false, true) {
		return ErrWorkerAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	deliveries, err := w.queue.Consume(runCtx)
	if err != nil {
		cancel()
		w.running.Store(false)
		return fmt.Errorf("consume fulfillment queue: %w", err)
	}

	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(runCtx, deliveries, w.done)

	w.logger.Info("fulfillment worker started")
	return nil
}

// Stop stops consuming and waits for the in-flight job, if any, to finish
// or for ctx to expire.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	w.cancel()

	select {
	case <-w.done:
		w.logger.Info("fulfillment worker stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn("fulfillment worker stop timed out with a job in flight")
		return ctx.Err()
	}
}

// IsRunning reports whether the worker is consuming
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

func (w *Worker) loop(ctx context.Context, deliveries <-chan fulfillment.Delivery, done chan struct{}) {
	defer close(done)
	labels := map[string]string{telemetry.ProfilingLabelOperation: "fulfill_job"}
	for delivery := range deliveries {
		// A job that has started runs to completion even during shutdown
		telemetry.WithProfilingLabels(context.WithoutCancel(ctx), labels, func(jobCtx context.Context) {
			w.HandleDelivery(jobCtx, delivery)
		})
	}
}

// HandleDelivery processes a single delivery and settles it on the queue
func (w *Worker) HandleDelivery(ctx context.Context, delivery fulfillment.Delivery) {
	job := delivery.Job
	log := w.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("order_id", job.OrderID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing job", zap.Any("panic", r))
			w.failDelivery(ctx, delivery, fmt.Sprintf("panic: %v", r))
		}
	}()

	if w.alreadyProcessed(ctx, job, log) {
		w.ackDelivery(ctx, delivery)
		return
	}

	order, err := w.ProcessJob(ctx, job)
	switch {
	case err == nil:
		w.ackDelivery(ctx, delivery)
		w.markProcessed(ctx, job, log)
	case errors.Is(err, errSkipped):
		log.Info("job skipped", zap.Error(err))
		w.ackDelivery(ctx, delivery)
		w.markProcessed(ctx, job, log)
	case errors.Is(err, errRedeliver):
		log.Error("job not settled", zap.Error(err))
	default:
		status := ""
		if order != nil {
			status = order.Status.String()
		}
		log.Warn("job failed", zap.String("order_status", status), zap.Error(err))
		w.failDelivery(ctx, delivery, err.Error())
		w.markProcessed(ctx, job, log)
	}
}

var (
	// errSkipped marks jobs that were settled without doing any work
	errSkipped = errors.New("job skipped")

	// errRedeliver marks jobs that must stay unsettled so the queue hands
	// them out again
	errRedeliver = errors.New("job left for redelivery")

	errInterrupted = errors.New("interrupted attempt left order in processing")
)

// ProcessJob runs the fulfillment steps for one job. Any error moves the
// order to failed and broadcasts orderFailed; the returned order is the
// last known snapshot. A job whose order cannot be failed returns
// errRedeliver.
func (w *Worker) ProcessJob(ctx context.Context, job fulfillment.Job) (*trade.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fulfillment", "process_job",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, job.OrderID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, job.Quantity),
	)
	defer span.End()

	order, err := w.orders.FindByID(ctx, job.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s not found", errSkipped, job.OrderID)
		}
		telemetry.RecordError(span, err)
		return w.failUnloaded(ctx, job, fmt.Errorf("load order: %w", err))
	}

	switch order.Status {
	case trade.OrderStatusCompleted, trade.OrderStatusFailed:
		return order, fmt.Errorf("%w: order already %s", errSkipped, order.Status)
	case trade.OrderStatusProcessing:
		// An earlier attempt stopped after claiming the order. Whether stock
		// was already written is unknown, so the order fails without
		// touching stock again.
		w.logger.Warn("order left in processing by an interrupted attempt",
			zap.String("order_id", order.ID.String()),
		)
		return w.fail(ctx, order, errInterrupted)
	default:
		if err := order.StartProcessing(); err != nil {
			return order, err
		}
		if err := w.orders.UpdateStatus(ctx, order); err != nil {
			telemetry.RecordError(span, err)
			return w.fail(ctx, order, fmt.Errorf("mark processing: %w", err))
		}
	}

	if err := w.fulfiller.Fulfill(ctx, job); err != nil {
		telemetry.RecordError(span, err)
		return w.fail(ctx, order, fmt.Errorf("fulfill: %w", err))
	}

	found, err := w.products.DecrementStock(ctx, job.ProductID, job.Quantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return w.fail(ctx, order, fmt.Errorf("decrement stock: %w", err))
	}
	if !found {
		// The order still completes when its product has disappeared.
		w.logger.Warn("product missing during fulfillment, completing without stock change",
			zap.String("order_id", order.ID.String()),
			zap.String("product_id", job.ProductID.String()),
		)
		telemetry.AddEvent(span, "product_missing", "product_id", job.ProductID.String())
	}

	processing := *order
	if err := order.Complete(); err != nil {
		return w.fail(ctx, &processing, err)
	}
	if err := w.orders.UpdateStatus(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return w.fail(ctx, &processing, fmt.Errorf("mark completed: %w", err))
	}

	w.broadcast(ctx, fulfillment.EventOrderCompleted, order)
	w.publishEvents(ctx, order)

	telemetry.SetAttribute(span, telemetry.SpanAttrOrderStatus, order.Status.String())
	telemetry.SetOK(span)

	w.logger.Info("order completed",
		zap.String("order_id", order.ID.String()),
		zap.Duration("since_placed", time.Since(order.CreatedAt)),
	)
	return order, nil
}

func (w *Worker) fail(ctx context.Context, order *trade.Order, cause error) (*trade.Order, error) {
	if err := order.Fail(cause.Error()); err != nil {
		w.logger.Error("cannot mark order failed",
			zap.String("order_id", order.ID.String()),
			zap.String("status", order.Status.String()),
			zap.Error(err),
		)
		return order, cause
	}
	if err := w.orders.UpdateStatus(ctx, order); err != nil {
		w.logger.Error("failed to persist failed status",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	w.broadcast(ctx, fulfillment.EventOrderFailed, order)
	w.publishEvents(ctx, order)

	return order, cause
}

// failUnloaded fails an order that could not be read. The status is written
// by id and the row is read back for the orderFailed payload.
func (w *Worker) failUnloaded(ctx context.Context, job fulfillment.Job, cause error) (*trade.Order, error) {
	log := w.logger.With(zap.String("order_id", job.OrderID.String()))

	if err := w.orders.MarkFailed(ctx, job.OrderID, time.Now()); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s not pending or processing", errSkipped, job.OrderID)
		}
		log.Error("cannot mark unreadable order failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errRedeliver, cause)
	}

	order, err := w.orders.FindByID(ctx, job.OrderID)
	if err != nil {
		log.Warn("order marked failed but could not be re-read", zap.Error(err))
		order = &trade.Order{
			ProductID: job.ProductID,
			Quantity:  job.Quantity,
			Status:    trade.OrderStatusFailed,
		}
		order.ID = job.OrderID
		order.UpdatedAt = time.Now()
	}

	w.broadcast(ctx, fulfillment.EventOrderFailed, order)
	return order, cause
}

func (w *Worker) broadcast(ctx context.Context, event string, order *trade.Order) {
	if w.broadcaster == nil {
		return
	}
	if err := w.broadcaster.Broadcast(ctx, event, apptrade.ToOrderResponse(order)); err != nil {
		w.logger.Warn("broadcast failed",
			zap.String("event", event),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (w *Worker) publishEvents(ctx context.Context, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if w.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := w.eventPublisher.Publish(ctx, events...); err != nil {
		w.logger.Warn("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (w *Worker) alreadyProcessed(ctx context.Context, job fulfillment.Job, log *zap.Logger) bool {
	if w.idempotency == nil || !w.idemConfig.Enabled {
		return false
	}
	processed, err := w.idempotency.IsProcessed(ctx, job.IdempotencyKey())
	if err != nil {
		log.Warn("idempotency check failed, processing anyway", zap.Error(err))
		return false
	}
	if processed {
		log.Info("duplicate job delivery skipped")
	}
	return processed
}

func (w *Worker) markProcessed(ctx context.Context, job fulfillment.Job, log *zap.Logger) {
	if w.idempotency == nil || !w.idemConfig.Enabled {
		return
	}
	if _, err := w.idempotency.MarkProcessed(ctx, job.IdempotencyKey(), w.idemConfig.TTL); err != nil {
		log.Warn("failed to record processed job", zap.Error(err))
	}
}

func (w *Worker) ackDelivery(ctx context.Context, delivery fulfillment.Delivery) {
	if err := w.queue.Ack(ctx, delivery.Handle); err != nil {
		w.logger.Error("failed to ack job",
			zap.String("job_id", delivery.Job.ID.String()),
			zap.Error(err),
		)
	}
}

func (w *Worker) failDelivery(ctx context.Context, delivery fulfillment.Delivery, reason string) {
	if err := w.queue.Fail(ctx, delivery.Handle, reason); err != nil {
		w.logger.Error("failed to mark job failed",
			zap.String("job_id", delivery.Job.ID.String()),
			zap.Error(err),
		)
	}
}
