package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fittrack/backend/internal/refreshtoken/domain"
)

const recordColumns = "id, user_id, session_id, token_hash, expires_at, revoked_at, created_at"

// PostgresRepository persists refresh-token records via database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh-token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the record. The record must have ID set. A unique partial
// index on (session_id) WHERE revoked_at IS NULL enforces the one-live-record
// invariant at the schema level.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) error {
	const query = `
        INSERT INTO refresh_tokens (id, user_id, session_id, token_hash, expires_at, revoked_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.SessionID, rec.TokenHash, rec.ExpiresAt,
		timeToNull(rec.RevokedAt), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// GetActiveByHash returns the live record for hash, or nil if none.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByHash(ctx context.Context, tokenHash string) (*domain.Record, error) {
	const query = `SELECT ` + recordColumns + ` FROM refresh_tokens WHERE token_hash = $1 AND revoked_at IS NULL`
	return r.get(ctx, query, tokenHash)
}

// GetByHash returns the record for hash regardless of revocation state, or nil if none.
func (r *PostgresRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.Record, error) {
	const query = `SELECT ` + recordColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	return r.get(ctx, query, tokenHash)
}

func (r *PostgresRepository) get(ctx context.Context, query, tokenHash string) (*domain.Record, error) {
	var rec domain.Record
	var revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&rec.ID, &rec.UserID, &rec.SessionID, &rec.TokenHash, &rec.ExpiresAt, &revokedAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	rec.RevokedAt = nullToTime(revokedAt)
	return &rec, nil
}

// Consume revokes the live record for hash in a single conditional update.
// The WHERE revoked_at IS NULL guard makes the row transition atomic: of two
// concurrent calls with the same hash, exactly one observes RowsAffected = 1.
func (r *PostgresRepository) Consume(ctx context.Context, tokenHash string) (bool, error) {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, tokenHash, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	return n == 1, nil
}

// Revoke marks the record with the given id as revoked if it is not already.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeBySession revokes all live records under the session. Returns the count revoked.
func (r *PostgresRepository) RevokeBySession(ctx context.Context, sessionID string) (int64, error) {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE session_id = $1 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, sessionID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens by session: %w", err)
	}
	return res.RowsAffected()
}

// RevokeAllByUser revokes all live records for the user. Returns the count revoked.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) (int64, error) {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens by user: %w", err)
	}
	return res.RowsAffected()
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
