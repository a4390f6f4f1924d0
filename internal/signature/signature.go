// Package signature authenticates payment confirmation claims. The signature
// is the only proof that a claim originated from the gateway holding the
// shared secret and was not forged or replayed by the client.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks gateway confirmation signatures. It is constructed with
// the shared secret at startup and injected where needed; the secret is
// never read from ambient state and never logged.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier holding the gateway key secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign computes the hex HMAC-SHA256 signature over "orderID|paymentID",
// the gateway's confirmation-authenticity contract.
func (v *Verifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the supplied signature matches the expected one.
// The comparison is constant-time.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	expected := v.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
