package repository

import (
	"context"
	"time"

	"fittrack/backend/internal/session/domain"
)

// Repository defines persistence for sessions. Revocation methods return the
// number of sessions actually transitioned to revoked, so revoking an
// already-revoked session reports 0 rather than an error.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) (int64, error)
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
	RevokeOthersByUser(ctx context.Context, userID, keepID string) (int64, error)
	Touch(ctx context.Context, id string, expiresAt, lastActiveAt time.Time, userAgent, ip string) error
}
