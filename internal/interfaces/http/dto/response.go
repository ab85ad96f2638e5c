package dto

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorInfo `json:"error"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code" example:"ERR_NOT_FOUND"`
	Message   string             `json:"message" example:"Product not found"`
	RequestID string             `json:"requestId,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   ErrorInfo{Code: code, Message: message},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ErrorResponse {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// IDRequest binds a UUID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ProductListQuery binds the product listing query string. Prices are
// parsed as decimals by the handler.
type ProductListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1,max=10000"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
	Category string `form:"category" binding:"omitempty,max=100"`
	MinPrice string `form:"minPrice" binding:"omitempty,decimal_gte0"`
	MaxPrice string `form:"maxPrice" binding:"omitempty,decimal_gte0"`
	Search   string `form:"search" binding:"omitempty,max=200"`
}

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status string                 `json:"status" example:"ok"`
	Checks map[string]HealthCheck `json:"checks,omitempty"`
}

// HealthCheck reports one dependency
type HealthCheck struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message,omitempty"`
	Value   any    `json:"value,omitempty"`
}
