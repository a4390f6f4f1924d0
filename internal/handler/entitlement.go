package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"unlock/internal/redis"
	"unlock/internal/repository"
)

// EntitlementHandler handles HTTP requests for per-user entitlements and
// payment history.
type EntitlementHandler struct {
	entitlements redis.EntitlementStoreInterface
	records      repository.PaymentRecordRepository
	userRepo     repository.UserRepository
}

// NewEntitlementHandler creates a new EntitlementHandler.
func NewEntitlementHandler(entitlements redis.EntitlementStoreInterface, records repository.PaymentRecordRepository, userRepo repository.UserRepository) *EntitlementHandler {
	return &EntitlementHandler{
		entitlements: entitlements,
		records:      records,
		userRepo:     userRepo,
	}
}

// EntitlementsResponse lists the targets a user has unlocked.
type EntitlementsResponse struct {
	UserID  string   `json:"user_id"`
	Targets []string `json:"targets"`
}

// PaymentRecordResponse is one row of a user's payment history.
type PaymentRecordResponse struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"target_id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// GetEntitlements handles GET /v1/users/:id/entitlements
func (h *EntitlementHandler) GetEntitlements(c *gin.Context) {
	userID := c.Param("id")

	if _, err := h.userRepo.GetByID(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	targets, err := h.entitlements.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if targets == nil {
		targets = []string{}
	}

	respondJSON(c, 200, EntitlementsResponse{
		UserID:  userID,
		Targets: targets,
	})
}

// GetPayments handles GET /v1/users/:id/payments
func (h *EntitlementHandler) GetPayments(c *gin.Context) {
	userID := c.Param("id")

	if _, err := h.userRepo.GetByID(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.records.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentRecordResponse, 0, len(records))
	for _, record := range records {
		response = append(response, PaymentRecordResponse{
			ID:        record.ID,
			TargetID:  record.TargetID,
			OrderID:   record.OrderID,
			PaymentID: record.PaymentID,
			Status:    string(record.Status),
			CreatedAt: record.CreatedAt,
		})
	}

	respondJSON(c, 200, response)
}
