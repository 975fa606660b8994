package repository

import (
	"context"

	"fittrack/backend/internal/audit/domain"
)

// Repository defines persistence for audit events. The store is append-only;
// no update or delete is defined.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	ListByActor(ctx context.Context, actorUserID string, limit, offset int32) ([]*domain.Event, error)
}
