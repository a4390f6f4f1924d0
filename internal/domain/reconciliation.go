package domain

import "time"

// ReconciliationCase records a verified payment whose entitlement grant (or
// audit write) did not complete. Cases are resolved manually by support;
// nothing in this service ever retries them.
type ReconciliationCase struct {
	ID        string
	UserID    string
	TargetID  string
	OrderID   string
	PaymentID string
	Reason    string
	CreatedAt time.Time
}
