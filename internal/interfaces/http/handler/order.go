package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/storefront/backend/internal/application/trade"
)

// OrderCommandService accepts and looks up orders
type OrderCommandService interface {
	SubmitOrder(ctx context.Context, req apptrade.SubmitOrderRequest) (*apptrade.OrderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*apptrade.OrderResponse, error)
}

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService OrderCommandService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderCommandService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Submit godoc
// @ID           submitOrder
// @Summary      Submit an order
// @Description  Validates the order against current stock and stores it as pending. Fulfillment runs in the background and its outcome is pushed on the event stream.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body SubmitOrderRequest true "Order submission"
// @Success      201 {object} OrderResponse
// @Failure      400 {object} ErrorResponse "Validation failed or insufficient stock"
// @Failure      404 {object} ErrorResponse "Product not found"
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Submit(c *gin.Context) {
	var req apptrade.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.SubmitOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getOrder
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} OrderResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
