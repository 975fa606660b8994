package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fittrack/backend/internal/audit/domain"
)

// PostgresRepository persists audit events via database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	const query = `
        INSERT INTO audit_events (id, actor_user_id, action, entity, entity_id, outcome, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	actor := sql.NullString{String: e.ActorUserID, Valid: e.ActorUserID != ""}
	meta := sql.NullString{String: e.Metadata, Valid: e.Metadata != ""}
	_, err := r.db.ExecContext(ctx, query,
		e.ID, actor, e.Action, e.Entity, e.EntityID, e.Outcome, meta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}

// ListByActor returns events for the actor, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByActor(ctx context.Context, actorUserID string, limit, offset int32) ([]*domain.Event, error) {
	const query = `
        SELECT id, actor_user_id, action, entity, entity_id, outcome, metadata, created_at
        FROM audit_events WHERE actor_user_id = $1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3
    `
	rows, err := r.db.QueryContext(ctx, query, actorUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		var actor, meta sql.NullString
		if err := rows.Scan(&e.ID, &actor, &e.Action, &e.Entity, &e.EntityID, &e.Outcome, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		e.ActorUserID = actor.String
		e.Metadata = meta.String
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}
