// Package webhook authenticates inbound PSP callbacks.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Pix-Signature"

var (
	ErrMissingSignature = errors.New("webhook signature missing")
	ErrBadSignature     = errors.New("webhook signature mismatch")
	ErrNoSecret         = errors.New("webhook secret not configured")
)

// Verifier checks HMAC signatures on webhook payloads.
type Verifier struct {
	secret        []byte
	allowUnsigned bool
}

// NewVerifier constructs a verifier. allowUnsigned only takes effect while secret is empty.
func NewVerifier(secret string, allowUnsigned bool) *Verifier {
	return &Verifier{
		secret:        []byte(secret),
		allowUnsigned: allowUnsigned && secret == "",
	}
}

// Sign returns the hex signature for body.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify validates signature against body. The signature may carry a "sha256=" prefix.
func (v *Verifier) Verify(body []byte, signature string) error {
	if len(v.secret) == 0 {
		if v.allowUnsigned {
			return nil
		}
		return ErrNoSecret
	}

	signature = strings.TrimSpace(signature)
	signature = strings.TrimPrefix(signature, "sha256=")
	if signature == "" {
		return ErrMissingSignature
	}

	expected := v.Sign(body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrBadSignature
	}
	return nil
}

// Unsigned reports whether unsigned payloads are accepted.
func (v *Verifier) Unsigned() bool {
	return v.allowUnsigned
}
