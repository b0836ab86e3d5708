package services

import (
	"crypto/subtle"
	"strings"
)

// TokenValidator is a shared-secret bearer gate. It has no notion of users or expiry.
type TokenValidator struct {
	secret string
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: secret}
}

// Validate accepts only the exact "Bearer" scheme with the configured secret.
// An unset secret rejects every credential.
func (v *TokenValidator) Validate(scheme, credential string) error {
	if scheme != "Bearer" {
		return &AuthError{Reason: AuthScheme}
	}
	if v.secret == "" || subtle.ConstantTimeCompare([]byte(credential), []byte(v.secret)) != 1 {
		return &AuthError{Reason: AuthToken}
	}
	return nil
}

// ValidateHeader splits an Authorization header value and validates it.
func (v *TokenValidator) ValidateHeader(header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return &AuthError{Reason: AuthMissing}
	}
	scheme, credential, _ := strings.Cut(header, " ")
	return v.Validate(scheme, strings.TrimSpace(credential))
}
