package signature

import (
	"strings"
	"testing"
)

func TestVerify_MatchesOwnSignature(t *testing.T) {
	t.Parallel()

	v := NewVerifier("test_secret")

	sig := v.Sign("order_abc", "pay_xyz")
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}

	if !v.Verify("order_abc", "pay_xyz", sig) {
		t.Error("expected signature to verify")
	}
}

func TestVerify_RejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	v := NewVerifier("test_secret")
	sig := v.Sign("order_abc", "pay_xyz")

	// Flip the last hex digit.
	last := sig[len(sig)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := sig[:len(sig)-1] + string(flipped)

	if v.Verify("order_abc", "pay_xyz", tampered) {
		t.Error("expected tampered signature to be rejected")
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewVerifier("real_secret")
	forger := NewVerifier("guessed_secret")

	forged := forger.Sign("order_abc", "pay_xyz")
	if signer.Verify("order_abc", "pay_xyz", forged) {
		t.Error("expected signature from wrong secret to be rejected")
	}
}

func TestVerify_RejectsSwappedIdentifiers(t *testing.T) {
	t.Parallel()

	v := NewVerifier("test_secret")
	sig := v.Sign("order_abc", "pay_xyz")

	// A signature for one pair must not authenticate another.
	if v.Verify("pay_xyz", "order_abc", sig) {
		t.Error("expected swapped identifiers to be rejected")
	}
	if v.Verify("order_abc", "pay_other", sig) {
		t.Error("expected different payment id to be rejected")
	}
}

func TestSign_IsLowercaseHex(t *testing.T) {
	t.Parallel()

	v := NewVerifier("test_secret")
	sig := v.Sign("order_abc", "pay_xyz")

	if len(sig) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(sig))
	}
	if sig != strings.ToLower(sig) {
		t.Error("expected lowercase hex encoding")
	}
}
