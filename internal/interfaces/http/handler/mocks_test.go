package handler

import (
	"context"

	"github.com/google/uuid"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/stretchr/testify/mock"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) GetByID(ctx context.Context, id uuid.UUID) (*appcatalog.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.ProductResponse), args.Error(1)
}

func (m *mockProductService) List(ctx context.Context, filter appcatalog.ProductListFilter) (*appcatalog.ProductListResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.ProductListResponse), args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) SubmitOrder(ctx context.Context, req apptrade.SubmitOrderRequest) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *mockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}
