package repository

import (
	"context"

	"fittrack/backend/internal/refreshtoken/domain"
)

// Repository defines persistence for refresh-token records.
//
// Consume is the concurrency boundary for rotation: it must revoke the record
// matching hash only if it is still live, in one atomic step, and report
// whether this caller won. Two concurrent refreshes of the same token must
// observe exactly one true.
type Repository interface {
	Create(ctx context.Context, rec *domain.Record) error
	// GetActiveByHash returns the non-revoked record for hash, or nil if none.
	GetActiveByHash(ctx context.Context, tokenHash string) (*domain.Record, error)
	// GetByHash searches the full history, including revoked records. Used to
	// distinguish a replayed (previously rotated) token from a fabricated one.
	GetByHash(ctx context.Context, tokenHash string) (*domain.Record, error)
	// Consume atomically revokes the live record for hash. Returns true when
	// this call performed the transition, false when the record was already
	// revoked or never existed.
	Consume(ctx context.Context, tokenHash string) (bool, error)
	Revoke(ctx context.Context, id string) error
	// RevokeBySession revokes all live records under the session; returns the count.
	RevokeBySession(ctx context.Context, sessionID string) (int64, error)
	// RevokeAllByUser revokes all live records for the user; returns the count.
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
}
