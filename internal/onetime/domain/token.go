package domain

import "time"

// TokenType classifies one-time tokens. (type, hash) is unique; once
// ConsumedAt is set the token is permanently unusable even if not expired.
type TokenType string

const (
	// TypeEmailVerification activates a pending_verification account.
	TypeEmailVerification TokenType = "email_verification"
	// TypePasswordReset authorizes a password reset.
	TypePasswordReset TokenType = "password_reset"
)

// ContactVerifyType returns the token type for verifying the contact channel
// with the given id, e.g. "contact_verify:3f1a".
func ContactVerifyType(contactID string) TokenType {
	return TokenType("contact_verify:" + contactID)
}

// Token is a hashed-at-rest single-use secret for out-of-band flows. The raw
// value is never persisted.
type Token struct {
	ID         string
	UserID     string
	Type       TokenType
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time // nil while usable
	CreatedAt  time.Time
}

// Expired reports whether the token's expiry has passed at the given time.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
