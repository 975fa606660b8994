package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fittrack/backend/internal/session/domain"
)

const sessionColumns = "id, user_id, user_agent, ip, expires_at, revoked_at, last_active_at, created_at"

// PostgresRepository persists sessions via database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListByUser returns all sessions for the user, newest first, including
// revoked and expired ones.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const query = `
        INSERT INTO sessions (id, user_id, user_agent, ip, expires_at, revoked_at, last_active_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.UserAgent, s.IP, s.ExpiresAt,
		timeToNull(s.RevokedAt), timeToNull(s.LastActiveAt), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Revoke marks the session revoked if it is not already. Returns the number
// of rows transitioned (0 or 1).
func (r *PostgresRepository) Revoke(ctx context.Context, id string) (int64, error) {
	const query = `UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("revoke session: %w", err)
	}
	return res.RowsAffected()
}

// RevokeAllByUser revokes every non-revoked session for the user. Returns the count revoked.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) (int64, error) {
	const query = `UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("revoke sessions by user: %w", err)
	}
	return res.RowsAffected()
}

// RevokeOthersByUser revokes every non-revoked session for the user except keepID.
// Returns the count revoked.
func (r *PostgresRepository) RevokeOthersByUser(ctx context.Context, userID, keepID string) (int64, error) {
	const query = `UPDATE sessions SET revoked_at = $3 WHERE user_id = $1 AND id <> $2 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID, keepID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("revoke other sessions: %w", err)
	}
	return res.RowsAffected()
}

// Touch extends the session's expiry and records last activity and current
// device metadata. Called on every successful refresh.
func (r *PostgresRepository) Touch(ctx context.Context, id string, expiresAt, lastActiveAt time.Time, userAgent, ip string) error {
	const query = `
        UPDATE sessions SET expires_at = $2, last_active_at = $3, user_agent = $4, ip = $5
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, expiresAt, lastActiveAt, userAgent, ip)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var revokedAt, lastActiveAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.UserAgent, &s.IP, &s.ExpiresAt, &revokedAt, &lastActiveAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.RevokedAt = nullToTime(revokedAt)
	s.LastActiveAt = nullToTime(lastActiveAt)
	return &s, nil
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullToTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
