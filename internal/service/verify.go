package service

import (
	"context"
	"errors"
	"log"

	"unlock/internal/signature"
)

// VerifyStatus tags the outcome of a verification attempt. Exactly three
// variants exist; callers must branch on the tag, never on a bare boolean
// plus error string.
type VerifyStatus string

const (
	// VerifyStatusRejected: the signature did not match. Treated as a
	// potential forgery or replay, never retried, nothing mutated.
	VerifyStatusRejected VerifyStatus = "rejected"

	// VerifyStatusGrantFailed: the payment is verified and captured but the
	// entitlement write failed. Manual reconciliation required.
	VerifyStatusGrantFailed VerifyStatus = "grant_failed"

	// VerifyStatusGranted: verified and granted.
	VerifyStatusGranted VerifyStatus = "granted"
)

// VerifyRequest contains a confirmation claim and the user/target pair it
// is meant to unlock.
type VerifyRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	UserID    string
	TargetID  string
}

// VerifyResult is the tagged outcome of Verify.
type VerifyResult struct {
	Status    VerifyStatus
	OrderID   string
	PaymentID string
	Err       error
}

// VerifyService authenticates confirmation claims and, on success, drives
// the entitlement grant. Verification itself persists nothing: it is a pure
// authentication gate, and it is the single trust boundary of the protocol.
type VerifyService struct {
	verifier *signature.Verifier
	grants   *GrantManager
}

// NewVerifyService creates a new VerifyService.
func NewVerifyService(verifier *signature.Verifier, grants *GrantManager) *VerifyService {
	return &VerifyService{
		verifier: verifier,
		grants:   grants,
	}
}

// Verify checks the claim's signature and grants the entitlement on a match.
// Missing fields are validation errors, returned as an error distinct from a
// mismatch. A mismatch yields a rejected result and no state mutation of any
// kind is attempted.
func (s *VerifyService) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.OrderID == "" {
		return nil, ErrInvalidOrderID
	}
	if req.PaymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	if req.Signature == "" {
		return nil, ErrMissingSignature
	}
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.TargetID == "" {
		return nil, ErrInvalidTargetID
	}

	if !s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		// Order id only: enough for fraud monitoring, no request bodies.
		log.Printf("signature mismatch for order %s", req.OrderID)
		return &VerifyResult{
			Status:    VerifyStatusRejected,
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
		}, nil
	}

	if err := s.grants.Grant(ctx, req.UserID, req.TargetID, req.OrderID, req.PaymentID); err != nil {
		var critical *CriticalGrantError
		if !errors.As(err, &critical) {
			critical = &CriticalGrantError{
				UserID:    req.UserID,
				TargetID:  req.TargetID,
				OrderID:   req.OrderID,
				PaymentID: req.PaymentID,
				Err:       err,
			}
		}
		return &VerifyResult{
			Status:    VerifyStatusGrantFailed,
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Err:       critical,
		}, nil
	}

	return &VerifyResult{
		Status:    VerifyStatusGranted,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
	}, nil
}
