package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService accepts orders and hands them to the fulfillment queue
type OrderService struct {
	productRepo    catalog.ProductRepository
	orderRepo      trade.OrderRepository
	queue          fulfillment.JobQueue
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
	queue fulfillment.JobQueue,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		queue:       queue,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SubmitOrder validates the request against current stock, persists a
// pending order and enqueues its fulfillment job. Stock is not touched here.
func (s *OrderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*OrderResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	if !product.HasStock(req.Quantity) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock")
	}

	order, err := trade.NewOrder(product.ID, product.UnitPrice(), req.Quantity, req.CustomerName, req.CustomerEmail)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	job := fulfillment.NewJob(order.ID, order.ProductID, order.Quantity)
	if _, err := s.queue.Enqueue(ctx, job); err != nil {
		// The order stays pending until something reconciles it.
		s.logger.Error("order persisted but fulfillment job not enqueued",
			zap.String("order_id", order.ID.String()),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("enqueue order %s: %w: %v", order.ID, shared.ErrEnqueueFailed, err)
	}

	s.logger.Info("order accepted",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", order.ProductID.String()),
		zap.Int("quantity", order.Quantity),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
	)

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
