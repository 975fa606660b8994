package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fittrack/backend/internal/onetime/domain"
)

// PostgresRepository persists one-time tokens via database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a one-time token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the token. The token must have ID set; (type, hash) is
// unique at the schema level.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Token) error {
	const query = `
        INSERT INTO one_time_tokens (id, user_id, token_type, token_hash, expires_at, consumed_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	var consumedAt sql.NullTime
	if t.ConsumedAt != nil {
		consumedAt = sql.NullTime{Time: *t.ConsumedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Type, t.TokenHash, t.ExpiresAt, consumedAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create one-time token: %w", err)
	}
	return nil
}

// GetActiveByTypeHash returns the unconsumed token for (type, hash), or nil if none.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByTypeHash(ctx context.Context, tokenType domain.TokenType, tokenHash string) (*domain.Token, error) {
	const query = `
        SELECT id, user_id, token_type, token_hash, expires_at, consumed_at, created_at
        FROM one_time_tokens WHERE token_type = $1 AND token_hash = $2 AND consumed_at IS NULL
    `
	var t domain.Token
	var consumedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenType, tokenHash).Scan(
		&t.ID, &t.UserID, &t.Type, &t.TokenHash, &t.ExpiresAt, &consumedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get one-time token: %w", err)
	}
	if consumedAt.Valid {
		t.ConsumedAt = &consumedAt.Time
	}
	return &t, nil
}

// Consume marks the token consumed if it is not already. Consumption is permanent.
func (r *PostgresRepository) Consume(ctx context.Context, id string) error {
	const query = `UPDATE one_time_tokens SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("consume one-time token: %w", err)
	}
	return nil
}

// ConsumeOthers marks all other unconsumed tokens of the type for the user as
// consumed, so only the newest issuance stays valid. Returns the count consumed.
func (r *PostgresRepository) ConsumeOthers(ctx context.Context, userID string, tokenType domain.TokenType, keepID string) (int64, error) {
	const query = `
        UPDATE one_time_tokens SET consumed_at = $4
        WHERE user_id = $1 AND token_type = $2 AND id <> $3 AND consumed_at IS NULL
    `
	res, err := r.db.ExecContext(ctx, query, userID, tokenType, keepID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("consume sibling one-time tokens: %w", err)
	}
	return res.RowsAffected()
}

// CountCreatedSince counts tokens of the type issued to the user since the given time.
func (r *PostgresRepository) CountCreatedSince(ctx context.Context, userID string, tokenType domain.TokenType, since time.Time) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM one_time_tokens
        WHERE user_id = $1 AND token_type = $2 AND created_at >= $3
    `
	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID, tokenType, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count one-time tokens: %w", err)
	}
	return n, nil
}

// PurgeOlderThan deletes tokens of the type for the user created before cutoff.
func (r *PostgresRepository) PurgeOlderThan(ctx context.Context, userID string, tokenType domain.TokenType, cutoff time.Time) error {
	const query = `DELETE FROM one_time_tokens WHERE user_id = $1 AND token_type = $2 AND created_at < $3`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenType, cutoff); err != nil {
		return fmt.Errorf("purge one-time tokens: %w", err)
	}
	return nil
}
