package repository

import (
	"context"

	"unlock/internal/domain"
)

// ReconciliationRepository defines the persistence operations for the manual
// support queue of verified-but-ungranted payments.
type ReconciliationRepository interface {
	// Create appends a reconciliation case.
	Create(ctx context.Context, c *domain.ReconciliationCase) error

	// ListOpen retrieves all cases, oldest first.
	ListOpen(ctx context.Context) ([]*domain.ReconciliationCase, error)
}
