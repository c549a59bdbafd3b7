// Package payment verifies payment gateway callbacks.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks a gateway's payment signature.
type Verifier interface {
	// Verify reports whether signature is the gateway's signature over the
	// gateway order and payment ids.
	Verify(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// HMACVerifier verifies HMAC-SHA256 signatures computed over
// "<gatewayOrderID>|<gatewayPaymentID>" and hex encoded.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier for the gateway's shared secret.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign returns the hex signature the gateway produces for the pair.
func (v *HMACVerifier) Sign(gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time. Empty inputs never verify.
func (v *HMACVerifier) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}

	expected := v.Sign(gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
