package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderRouter(svc *mockOrderService) *gin.Engine {
	h := NewOrderHandler(svc)
	r := gin.New()
	r.POST("/api/orders", h.Submit)
	r.GET("/api/orders/:id", h.GetByID)
	return r
}

func postOrder(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pendingOrder(productID uuid.UUID) *apptrade.OrderResponse {
	now := time.Now().UTC()
	return &apptrade.OrderResponse{
		ID:            uuid.New(),
		ProductID:     productID,
		Quantity:      3,
		TotalPrice:    decimal.RequireFromString("59.97"),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Status:        "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderHandler_Submit(t *testing.T) {
	productID := uuid.New()
	validBody := fmt.Sprintf(`{"productId":%q,"quantity":3,"customerName":"Ada Lovelace","customerEmail":"ada@example.com"}`, productID)

	t.Run("created", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("SubmitOrder", mock.Anything, apptrade.SubmitOrderRequest{
			ProductID:     productID,
			Quantity:      3,
			CustomerName:  "Ada Lovelace",
			CustomerEmail: "ada@example.com",
		}).Return(pendingOrder(productID), nil)

		w := postOrder(setupOrderRouter(svc), validBody)

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "59.97", body["totalPrice"])
		assert.Equal(t, productID.String(), body["productId"])
		svc.AssertExpectations(t)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock"))

		w := postOrder(setupOrderRouter(svc), validBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInsufficientStock, decodeError(t, w).Error.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("NOT_FOUND", "Product not found"))

		w := postOrder(setupOrderRouter(svc), validBody)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Product not found", decodeError(t, w).Error.Message)
	})

	t.Run("enqueue failure", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("enqueue order: %w: timeout", shared.ErrEnqueueFailed))

		w := postOrder(setupOrderRouter(svc), validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeEnqueueFailed, decodeError(t, w).Error.Code)
	})

	malformed := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty body", ``, dto.ErrCodeInvalidJSON},
		{"broken json", `{"productId":`, dto.ErrCodeInvalidJSON},
		{"quantity as string", fmt.Sprintf(`{"productId":%q,"quantity":"3","customerName":"A","customerEmail":"a@b.co"}`, productID), dto.ErrCodeInvalidJSON},
		{"missing product", `{"quantity":1,"customerName":"A","customerEmail":"a@b.co"}`, dto.ErrCodeValidation},
		{"zero quantity", fmt.Sprintf(`{"productId":%q,"quantity":0,"customerName":"A","customerEmail":"a@b.co"}`, productID), dto.ErrCodeValidation},
		{"negative quantity", fmt.Sprintf(`{"productId":%q,"quantity":-2,"customerName":"A","customerEmail":"a@b.co"}`, productID), dto.ErrCodeValidation},
		{"bad email", fmt.Sprintf(`{"productId":%q,"quantity":1,"customerName":"A","customerEmail":"nope"}`, productID), dto.ErrCodeValidation},
		{"missing name", fmt.Sprintf(`{"productId":%q,"quantity":1,"customerEmail":"a@b.co"}`, productID), dto.ErrCodeValidation},
		{"bad product id", `{"productId":"xyz","quantity":1,"customerName":"A","customerEmail":"a@b.co"}`, dto.ErrCodeInvalidInput},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)

			w := postOrder(setupOrderRouter(svc), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
			svc.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(mockOrderService)
		order := pendingOrder(uuid.New())
		order.Status = "completed"
		svc.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		w := httptest.NewRecorder()
		setupOrderRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got apptrade.OrderResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "completed", got.Status)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(mockOrderService)
		id := uuid.New()
		svc.On("GetByID", mock.Anything, id).Return(nil, shared.NewDomainError("NOT_FOUND", "Order not found"))

		w := httptest.NewRecorder()
		setupOrderRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Order not found", decodeError(t, w).Error.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := new(mockOrderService)

		w := httptest.NewRecorder()
		setupOrderRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/nope", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
