package auth

import "context"

// AuthContext identifies the authenticated caller of an orchestrator
// operation. The transport boundary constructs it once from the verified
// access token and passes it explicitly; the service never reads identity
// from a request object.
type AuthContext struct {
	UserID    string
	Role      string
	SessionID string
}

// RateLimiter is an injected capability for throttling pre-authentication
// endpoints (login, reset requests). Allow reports whether the action keyed
// by key may proceed. Implementations own their backing store; the service
// holds no shared mutable limiter state. A nil RateLimiter means unlimited.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}
