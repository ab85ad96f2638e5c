package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductQueryService is the read side of the catalog
type ProductQueryService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appcatalog.ProductResponse, error)
	List(ctx context.Context, filter appcatalog.ProductListFilter) (*appcatalog.ProductListResponse, error)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	BaseHandler
	productService ProductQueryService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductQueryService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Returns one page of products, newest first. Price bounds are inclusive and the search matches product names case-insensitively.
// @Tags         products
// @Produce      json
// @Param        page      query int    false "Page number (1-indexed)" default(1) minimum(1) maximum(10000)
// @Param        limit     query int    false "Page size, capped at 100" default(10) minimum(1)
// @Param        category  query string false "Exact category"
// @Param        minPrice  query string false "Minimum price (inclusive)"
// @Param        maxPrice  query string false "Maximum price (inclusive)"
// @Param        search    query string false "Name substring"
// @Success      200 {object} ProductListResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query dto.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	filter := appcatalog.ProductListFilter{
		Page:     query.Page,
		Limit:    query.Limit,
		Category: query.Category,
		Search:   query.Search,
	}
	var ok bool
	if filter.MinPrice, ok = h.parsePrice(c, query.MinPrice, "minPrice"); !ok {
		return
	}
	if filter.MaxPrice, ok = h.parsePrice(c, query.MaxPrice, "maxPrice"); !ok {
		return
	}

	result, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} ProductResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// parsePrice parses an optional price bound. An empty value is an open bound.
func (h *ProductHandler) parsePrice(c *gin.Context, value, field string) (*decimal.Decimal, bool) {
	if value == "" {
		return nil, true
	}
	price, err := decimal.NewFromString(value)
	if err != nil || price.IsNegative() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, field+" must be a non-negative decimal number")
		return nil, false
	}
	return &price, true
}
