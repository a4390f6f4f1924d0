package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"unlock/internal/service"
)

// ReconciliationHandler exposes the manual support queue to operators.
type ReconciliationHandler struct {
	reconciliationService *service.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationService *service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// ReconciliationCaseResponse is one open case awaiting manual resolution.
type ReconciliationCaseResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TargetID  string    `json:"target_id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOpen handles GET /v1/reconciliations
func (h *ReconciliationHandler) ListOpen(c *gin.Context) {
	cases, err := h.reconciliationService.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReconciliationCaseResponse, 0, len(cases))
	for _, rc := range cases {
		response = append(response, ReconciliationCaseResponse{
			ID:        rc.ID,
			UserID:    rc.UserID,
			TargetID:  rc.TargetID,
			OrderID:   rc.OrderID,
			PaymentID: rc.PaymentID,
			Reason:    rc.Reason,
			CreatedAt: rc.CreatedAt,
		})
	}

	respondJSON(c, 200, response)
}
