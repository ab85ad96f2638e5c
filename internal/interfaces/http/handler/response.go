package handler

import (
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	apptrade "github.com/storefront/backend/internal/application/trade"
)

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   ErrorInfoBody `json:"error"`
}

// ErrorInfoBody is the error object of ErrorResponse
type ErrorInfoBody struct {
	Code    string `json:"code" example:"ERR_NOT_FOUND"`
	Message string `json:"message" example:"Product not found"`
}

// ProductListResponse documents GET /products
// @Description One page of products
type ProductListResponse = appcatalog.ProductListResponse

// ProductResponse documents a single product
// @Description Product
type ProductResponse = appcatalog.ProductResponse

// OrderResponse documents a single order
// @Description Order snapshot
type OrderResponse = apptrade.OrderResponse

// SubmitOrderRequest documents POST /orders
// @Description Order submission
type SubmitOrderRequest = apptrade.SubmitOrderRequest
