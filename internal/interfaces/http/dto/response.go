package dto

import "net/http"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details. Details carries the upstream
// validation messages verbatim when the ERP rejected a request.
type ErrorInfo struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with detail lines
func NewErrorResponseWithDetails(code, message string, details []string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Error codes used by the boundary itself
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeUpstream      = "ERP_UNAVAILABLE"
)

// GetHTTPStatus maps a domain error code to an HTTP status code
func GetHTTPStatus(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "ALREADY_EXISTS":
		return http.StatusConflict
	case "SYNC_IN_PROGRESS":
		return http.StatusConflict
	case "INSUFFICIENT_STOCK":
		return http.StatusUnprocessableEntity
	case "CART_EMPTY", "INVALID_INPUT", "INVALID_QUANTITY", "INVALID_NAME", "INVALID_EMAIL":
		return http.StatusBadRequest
	case "INVALID_FEED", "INVALID_PRICE":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
