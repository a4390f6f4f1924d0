package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"

	"unlock/internal/domain"
	"unlock/internal/repository"
)

// ReconciliationService durably flags verified payments that could not be
// granted, for manual support action. There is no automatic re-grant: a
// sweep that retried after capture would blur the protocol's no-auto-retry
// rule.
type ReconciliationService struct {
	repo repository.ReconciliationRepository
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(repo repository.ReconciliationRepository) *ReconciliationService {
	return &ReconciliationService{repo: repo}
}

// FlagCriticalFailure records a reconciliation case. The log line carries
// every identifier support needs (order, payment, user, target) so the case
// survives even if the queue insert itself fails.
func (s *ReconciliationService) FlagCriticalFailure(ctx context.Context, c *domain.ReconciliationCase) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()

	log.Printf("[RECONCILE] order=%s payment=%s user=%s target=%s reason=%q",
		c.OrderID, c.PaymentID, c.UserID, c.TargetID, c.Reason)

	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(&CriticalGrantError{
			UserID:    c.UserID,
			TargetID:  c.TargetID,
			OrderID:   c.OrderID,
			PaymentID: c.PaymentID,
			Err:       errors.New(c.Reason),
		})
	}

	if err := s.repo.Create(ctx, c); err != nil {
		log.Printf("[RECONCILE] queue insert failed for order=%s: %v", c.OrderID, err)
	}
}

// ListOpen returns all reconciliation cases, oldest first.
func (s *ReconciliationService) ListOpen(ctx context.Context) ([]*domain.ReconciliationCase, error) {
	return s.repo.ListOpen(ctx)
}
