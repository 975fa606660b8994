package repository

import (
	"context"
	"time"

	"fittrack/backend/internal/onetime/domain"
)

// Repository defines persistence for one-time tokens.
type Repository interface {
	Create(ctx context.Context, t *domain.Token) error
	// GetActiveByTypeHash returns the unconsumed token matching (type, hash),
	// or nil if none. Expiry is checked by the caller so expired tokens can be
	// consumed as a side effect.
	GetActiveByTypeHash(ctx context.Context, tokenType domain.TokenType, tokenHash string) (*domain.Token, error)
	// Consume marks the token consumed if it is not already.
	Consume(ctx context.Context, id string) error
	// ConsumeOthers marks all unconsumed tokens of the type for the user as
	// consumed, except keepID. Returns the count consumed.
	ConsumeOthers(ctx context.Context, userID string, tokenType domain.TokenType, keepID string) (int64, error)
	// CountCreatedSince counts tokens of the type issued to the user since the
	// given time, consumed or not. Backs the resend throttle.
	CountCreatedSince(ctx context.Context, userID string, tokenType domain.TokenType, since time.Time) (int64, error)
	// PurgeOlderThan deletes tokens of the type for the user created before cutoff.
	PurgeOlderThan(ctx context.Context, userID string, tokenType domain.TokenType, cutoff time.Time) error
}
