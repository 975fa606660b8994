package domain

import "time"

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is one append-only audit log entry for a security-relevant action.
// Events are never mutated or deleted by this subsystem.
type Event struct {
	ID          string
	ActorUserID string // empty when the actor is unknown (e.g. garbled logout token)
	Action      string // e.g. "auth.login", "auth.refresh_reuse"
	Entity      string // e.g. "session", "user"
	EntityID    string
	Outcome     string
	Metadata    string
	CreatedAt   time.Time
}
