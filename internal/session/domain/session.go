package domain

import "time"

// Session is one logical device login, stable across refresh rotations.
// Revocation is terminal: RevokedAt is never cleared once set.
type Session struct {
	ID           string
	UserID       string
	UserAgent    string
	IP           string
	ExpiresAt    time.Time
	RevokedAt    *time.Time // nil when not revoked
	LastActiveAt *time.Time
	CreatedAt    time.Time
}

// Expired reports whether the session's expiry has passed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Revoked reports whether the session has been revoked.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}
