package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"unlock/internal/gateway"
	"unlock/internal/repository"
	"unlock/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	// The gateway's own status passes through so the caller sees the
	// gateway's structured rejection rather than a generic 500.
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		if gwErr.StatusCode >= 400 && gwErr.StatusCode < 600 {
			return gwErr.StatusCode
		}
		return http.StatusBadGateway
	}

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidReceipt),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrMissingSignature),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidTargetID):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrReceiptInFlight):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
