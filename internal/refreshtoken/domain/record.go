package domain

import "time"

// Record is a persisted refresh-token secret, stored only as a SHA-256 hash
// and bound to a session. At most one non-revoked Record exists per session;
// rotation revokes the old record in the same step that decides the winner
// of concurrent refreshes.
type Record struct {
	ID        string
	UserID    string
	SessionID string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time // nil when live
	CreatedAt time.Time
}

// Expired reports whether the record's expiry has passed at the given time.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
