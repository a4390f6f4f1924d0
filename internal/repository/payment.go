package repository

import (
	"context"

	"unlock/internal/domain"
)

// PaymentRecordRepository defines the append-only persistence operations for
// payment audit records.
type PaymentRecordRepository interface {
	// Create appends a payment record. Returns false when a record for the
	// same (orderID, paymentID) pair already exists; that is not an error.
	Create(ctx context.Context, record *domain.PaymentRecord) (bool, error)

	// GetByOrderAndPayment retrieves the record for a confirmation pair.
	GetByOrderAndPayment(ctx context.Context, orderID, paymentID string) (*domain.PaymentRecord, error)

	// ListByUser retrieves all records for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.PaymentRecord, error)
}
