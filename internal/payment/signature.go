package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks checkout callbacks against the gateway key secret
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID"
func (v *Verifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the callback identifiers
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	if len(v.secret) == 0 || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(v.Sign(orderID, paymentID)), []byte(signature))
}
