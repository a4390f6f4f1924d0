package postgres

import (
	"context"
	"database/sql"

	"unlock/internal/domain"
)

// ReconciliationRepository is a PostgreSQL implementation of
// repository.ReconciliationRepository.
type ReconciliationRepository struct {
	q Querier
}

// NewReconciliationRepository creates a new PostgreSQL reconciliation repository.
func NewReconciliationRepository(db *sql.DB) *ReconciliationRepository {
	return &ReconciliationRepository{q: db}
}

// Create appends a reconciliation case.
func (r *ReconciliationRepository) Create(ctx context.Context, c *domain.ReconciliationCase) error {
	query := `
		INSERT INTO reconciliation_cases (id, user_id, target_id, order_id, payment_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.TargetID,
		c.OrderID,
		c.PaymentID,
		c.Reason,
		c.CreatedAt,
	)

	return err
}

// ListOpen retrieves all cases, oldest first.
func (r *ReconciliationRepository) ListOpen(ctx context.Context) ([]*domain.ReconciliationCase, error) {
	query := `
		SELECT id, user_id, target_id, order_id, payment_id, reason, created_at
		FROM reconciliation_cases
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*domain.ReconciliationCase
	for rows.Next() {
		var c domain.ReconciliationCase
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.TargetID,
			&c.OrderID,
			&c.PaymentID,
			&c.Reason,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		cases = append(cases, &c)
	}

	return cases, rows.Err()
}
