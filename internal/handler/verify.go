package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unlock/internal/service"
)

// VerifyHandler handles HTTP requests for payment confirmation verification.
type VerifyHandler struct {
	verifyService *service.VerifyService
}

// NewVerifyHandler creates a new VerifyHandler.
func NewVerifyHandler(verifyService *service.VerifyService) *VerifyHandler {
	return &VerifyHandler{verifyService: verifyService}
}

// VerifyRequest is the HTTP request body for verifying a confirmation claim.
type VerifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	UserID    string `json:"user_id"`
	TargetID  string `json:"target_id"`
}

// VerifyResponse is the HTTP response for verification. Three shapes exist:
// {verified:true}; {verified:false, error} on signature mismatch; and
// {verified:true, error, order_id} when the payment is good but the grant
// failed and the order id must be retained for support.
type VerifyResponse struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
	OrderID  string `json:"order_id,omitempty"`
}

// Verify handles POST /v1/verify
func (h *VerifyHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.verifyService.Verify(c.Request.Context(), service.VerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		UserID:    req.UserID,
		TargetID:  req.TargetID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	switch result.Status {
	case service.VerifyStatusGranted:
		respondJSON(c, http.StatusOK, VerifyResponse{Verified: true})
	case service.VerifyStatusGrantFailed:
		// The payment is captured and verified; only the grant failed.
		// 200 with the order id: the client must tell the user to contact
		// support, not to pay again.
		respondJSON(c, http.StatusOK, VerifyResponse{
			Verified: true,
			Error:    "entitlement grant failed; contact support with this order id",
			OrderID:  result.OrderID,
		})
	default:
		respondJSON(c, http.StatusBadRequest, VerifyResponse{
			Verified: false,
			Error:    "signature verification failed",
		})
	}
}
