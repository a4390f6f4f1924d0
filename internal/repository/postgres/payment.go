package postgres

import (
	"context"
	"database/sql"
	"errors"

	"unlock/internal/domain"
	"unlock/internal/repository"
)

// PaymentRecordRepository is a PostgreSQL implementation of
// repository.PaymentRecordRepository.
type PaymentRecordRepository struct {
	q Querier
}

// NewPaymentRecordRepository creates a new PostgreSQL payment record repository.
func NewPaymentRecordRepository(db *sql.DB) *PaymentRecordRepository {
	return &PaymentRecordRepository{q: db}
}

// NewPaymentRecordRepositoryWithTx creates a payment record repository using a transaction.
func NewPaymentRecordRepositoryWithTx(tx *sql.Tx) *PaymentRecordRepository {
	return &PaymentRecordRepository{q: tx}
}

// Create appends a payment record. The unique index on (order_id, payment_id)
// plus ON CONFLICT DO NOTHING makes the append idempotent under concurrent
// duplicate grants; false means the row already existed.
func (r *PaymentRecordRepository) Create(ctx context.Context, record *domain.PaymentRecord) (bool, error) {
	query := `
		INSERT INTO payment_records (id, user_id, target_id, order_id, payment_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id, payment_id) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.TargetID,
		record.OrderID,
		record.PaymentID,
		record.Status,
		record.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// GetByOrderAndPayment retrieves the record for a confirmation pair.
func (r *PaymentRecordRepository) GetByOrderAndPayment(ctx context.Context, orderID, paymentID string) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, target_id, order_id, payment_id, status, created_at
		FROM payment_records WHERE order_id = $1 AND payment_id = $2
	`

	var record domain.PaymentRecord
	err := r.q.QueryRowContext(ctx, query, orderID, paymentID).Scan(
		&record.ID,
		&record.UserID,
		&record.TargetID,
		&record.OrderID,
		&record.PaymentID,
		&record.Status,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &record, nil
}

// ListByUser retrieves all records for a user, newest first.
func (r *PaymentRecordRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, target_id, order_id, payment_id, status, created_at
		FROM payment_records WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.PaymentRecord
	for rows.Next() {
		var record domain.PaymentRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.TargetID,
			&record.OrderID,
			&record.PaymentID,
			&record.Status,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
