package domain

import "time"

// PaymentStatus represents the state of a recorded payment.
type PaymentStatus string

const (
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
)

// ConfirmationClaim is the payload the checkout widget hands back after the
// user completes payment. It is untrusted until the signature is verified.
type ConfirmationClaim struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// PaymentRecord is the append-only audit row written once per verified
// payment. (OrderID, PaymentID) is unique, so a retried grant can never
// produce a second row.
type PaymentRecord struct {
	ID        string
	UserID    string
	TargetID  string
	OrderID   string
	PaymentID string
	Status    PaymentStatus
	CreatedAt time.Time
}
