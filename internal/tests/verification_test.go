package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"unlock/internal/service"
	"unlock/internal/signature"
)

func newVerifyService(secret string) (*service.VerifyService, *MockEntitlementStore, *MockPaymentRecordRepository, *MockReconciliationRepository) {
	entitlements := NewMockEntitlementStore()
	records := NewMockPaymentRecordRepository()
	reconciliations := NewMockReconciliationRepository()

	reconciler := service.NewReconciliationService(reconciliations)
	grants := service.NewGrantManager(entitlements, records, reconciler)
	verifier := signature.NewVerifier(secret)

	return service.NewVerifyService(verifier, grants), entitlements, records, reconciliations
}

func TestVerify_ValidSignatureGrants(t *testing.T) {
	svc, entitlements, records, _ := newVerifyService("test_secret")
	sig := signature.NewVerifier("test_secret").Sign("order_abc", "pay_xyz")

	result, err := svc.Verify(context.Background(), service.VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: sig,
		UserID:    "u1",
		TargetID:  "g42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != service.VerifyStatusGranted {
		t.Fatalf("expected granted, got %s", result.Status)
	}
	if result.OrderID != "order_abc" || result.PaymentID != "pay_xyz" {
		t.Errorf("expected identifiers echoed back, got %+v", result)
	}

	if !entitlements.HasTarget("u1", "g42") {
		t.Error("expected entitlement granted")
	}
	if records.CountRecords() != 1 {
		t.Errorf("expected 1 payment record, got %d", records.CountRecords())
	}

	record, err := records.GetByOrderAndPayment(context.Background(), "order_abc", "pay_xyz")
	if err != nil {
		t.Fatalf("expected record retrievable: %v", err)
	}
	if record.UserID != "u1" || record.TargetID != "g42" {
		t.Errorf("expected record to carry user/target, got %+v", record)
	}
}

func TestVerify_TamperedSignatureRejectedWithoutMutation(t *testing.T) {
	svc, entitlements, records, reconciliations := newVerifyService("test_secret")

	sig := signature.NewVerifier("test_secret").Sign("order_abc", "pay_xyz")
	tampered := sig[:len(sig)-1]
	if sig[len(sig)-1] == '0' {
		tampered += "1"
	} else {
		tampered += "0"
	}

	result, err := svc.Verify(context.Background(), service.VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: tampered,
		UserID:    "u1",
		TargetID:  "g42",
	})
	if err != nil {
		t.Fatalf("expected a rejected result, not an error: %v", err)
	}
	if result.Status != service.VerifyStatusRejected {
		t.Fatalf("expected rejected, got %s", result.Status)
	}

	if got := atomic.LoadInt32(&entitlements.GrantCallCount); got != 0 {
		t.Errorf("expected no grant attempt on rejection, got %d", got)
	}
	if records.CountRecords() != 0 {
		t.Error("expected no payment record on rejection")
	}
	if reconciliations.CountCases() != 0 {
		t.Error("expected no reconciliation case on rejection")
	}
}

func TestVerify_SignatureForDifferentPairRejected(t *testing.T) {
	svc, entitlements, _, _ := newVerifyService("test_secret")

	// A valid signature replayed against another order must not verify.
	sig := signature.NewVerifier("test_secret").Sign("order_abc", "pay_xyz")

	result, err := svc.Verify(context.Background(), service.VerifyRequest{
		OrderID:   "order_other",
		PaymentID: "pay_xyz",
		Signature: sig,
		UserID:    "u1",
		TargetID:  "g42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != service.VerifyStatusRejected {
		t.Fatalf("expected rejected, got %s", result.Status)
	}
	if entitlements.HasTarget("u1", "g42") {
		t.Error("expected no entitlement for replayed signature")
	}
}

func TestVerify_MissingFieldsAreValidationErrors(t *testing.T) {
	base := service.VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: "deadbeef",
		UserID:    "u1",
		TargetID:  "g42",
	}

	cases := []struct {
		name    string
		mutate  func(r *service.VerifyRequest)
		wantErr error
	}{
		{"missing order id", func(r *service.VerifyRequest) { r.OrderID = "" }, service.ErrInvalidOrderID},
		{"missing payment id", func(r *service.VerifyRequest) { r.PaymentID = "" }, service.ErrInvalidPaymentID},
		{"missing signature", func(r *service.VerifyRequest) { r.Signature = "" }, service.ErrMissingSignature},
		{"missing user id", func(r *service.VerifyRequest) { r.UserID = "" }, service.ErrInvalidUserID},
		{"missing target id", func(r *service.VerifyRequest) { r.TargetID = "" }, service.ErrInvalidTargetID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, entitlements, _, _ := newVerifyService("test_secret")

			req := base
			tc.mutate(&req)

			result, err := svc.Verify(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if result != nil {
				t.Errorf("expected nil result for validation error, got %+v", result)
			}
			if atomic.LoadInt32(&entitlements.GrantCallCount) != 0 {
				t.Error("expected no grant attempt for malformed request")
			}
		})
	}
}

func TestVerify_GrantFailureReportsCritical(t *testing.T) {
	svc, entitlements, _, reconciliations := newVerifyService("test_secret")
	entitlements.GrantError = errors.New("redis write refused")

	sig := signature.NewVerifier("test_secret").Sign("order_abc", "pay_xyz")

	result, err := svc.Verify(context.Background(), service.VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: sig,
		UserID:    "u1",
		TargetID:  "g42",
	})
	if err != nil {
		t.Fatalf("expected a grant_failed result, not an error: %v", err)
	}
	if result.Status != service.VerifyStatusGrantFailed {
		t.Fatalf("expected grant_failed, got %s", result.Status)
	}

	var critical *service.CriticalGrantError
	if !errors.As(result.Err, &critical) {
		t.Fatalf("expected CriticalGrantError, got %v", result.Err)
	}
	if critical.OrderID != "order_abc" {
		t.Errorf("expected order id carried for support, got %s", critical.OrderID)
	}

	if reconciliations.CountCases() != 1 {
		t.Fatalf("expected 1 reconciliation case, got %d", reconciliations.CountCases())
	}
	c := reconciliations.LastCase()
	if c.OrderID != "order_abc" || c.PaymentID != "pay_xyz" || c.UserID != "u1" {
		t.Errorf("expected case to carry identifiers, got %+v", c)
	}
}
