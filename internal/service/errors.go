package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned when the amount is not a positive integer
	// of minor currency units.
	ErrInvalidAmount = errors.New("amount must be a positive integer of minor currency units")

	// ErrInvalidCurrency is returned when the currency code is empty.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrInvalidReceipt is returned when the receipt is empty.
	ErrInvalidReceipt = errors.New("invalid receipt")

	// ErrReceiptInFlight is returned when an order for the same receipt is
	// already being created.
	ErrReceiptInFlight = errors.New("order creation for this receipt already in flight")

	// ErrOrderNotFound is returned when no snapshot exists for an order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderID is returned when the order id is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidPaymentID is returned when the payment id is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrMissingSignature is returned when the signature field is empty.
	// Distinct from a signature mismatch: this is a malformed request, not a
	// failed verification.
	ErrMissingSignature = errors.New("missing signature")

	// ErrInvalidUserID is returned when the user id is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidTargetID is returned when the target id is empty.
	ErrInvalidTargetID = errors.New("invalid target id")
)

// CriticalGrantError marks the paid-but-not-granted state: the gateway has
// captured the payment and the signature verified, but the entitlement write
// failed. It must never be presented as retryable; it carries the order id
// for out-of-band reconciliation.
type CriticalGrantError struct {
	UserID    string
	TargetID  string
	OrderID   string
	PaymentID string
	Err       error
}

func (e *CriticalGrantError) Error() string {
	return fmt.Sprintf("payment captured but entitlement grant failed for order %s: %v", e.OrderID, e.Err)
}

func (e *CriticalGrantError) Unwrap() error {
	return e.Err
}
