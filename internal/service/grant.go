package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"unlock/internal/domain"
	"unlock/internal/redis"
	"unlock/internal/repository"
)

// GrantManager records unlocked entitlements and their audit trail. It must
// only ever be invoked after the confirmation signature has verified.
type GrantManager struct {
	entitlements redis.EntitlementStoreInterface
	records      repository.PaymentRecordRepository
	reconciler   *ReconciliationService
}

// NewGrantManager creates a new GrantManager.
func NewGrantManager(entitlements redis.EntitlementStoreInterface, records repository.PaymentRecordRepository, reconciler *ReconciliationService) *GrantManager {
	return &GrantManager{
		entitlements: entitlements,
		records:      records,
		reconciler:   reconciler,
	}
}

// Grant adds the target to the user's entitlement set and appends the audit
// payment record. Both effects are idempotent: the set-union write is a
// no-op on repeat, and the record insert is keyed by (orderID, paymentID).
//
// If the entitlement write fails, money has already moved without the user
// receiving the product. That state is flagged for manual reconciliation and
// returned as a CriticalGrantError carrying the order id; it must never be
// answered with "please try again".
func (m *GrantManager) Grant(ctx context.Context, userID, targetID, orderID, paymentID string) error {
	if err := m.entitlements.Grant(ctx, userID, targetID); err != nil {
		m.reconciler.FlagCriticalFailure(ctx, &domain.ReconciliationCase{
			UserID:    userID,
			TargetID:  targetID,
			OrderID:   orderID,
			PaymentID: paymentID,
			Reason:    "entitlement write failed after capture: " + err.Error(),
		})
		return &CriticalGrantError{
			UserID:    userID,
			TargetID:  targetID,
			OrderID:   orderID,
			PaymentID: paymentID,
			Err:       err,
		}
	}

	record := &domain.PaymentRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		TargetID:  targetID,
		OrderID:   orderID,
		PaymentID: paymentID,
		Status:    domain.PaymentStatusCaptured,
		CreatedAt: time.Now(),
	}

	if _, err := m.records.Create(ctx, record); err != nil {
		// The user holds the entitlement; only the audit trail has a gap.
		// Flag it for support instead of failing the grant.
		m.reconciler.FlagCriticalFailure(ctx, &domain.ReconciliationCase{
			UserID:    userID,
			TargetID:  targetID,
			OrderID:   orderID,
			PaymentID: paymentID,
			Reason:    "audit record write failed after grant: " + err.Error(),
		})
	}

	return nil
}
