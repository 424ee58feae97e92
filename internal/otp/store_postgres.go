package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"harambee/pkg/platform/sentinel"
)

// PostgresStore persists challenges in PostgreSQL. This is the default
// backend: challenge rows are an audit trail as well as live state.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed challenge store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *Challenge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO otp_challenges (id, identifier, code, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Identifier, c.Code, c.ExpiresAt, c.Verified, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert otp challenge: %w", err)
	}
	return nil
}

func (s *PostgresStore) Consume(ctx context.Context, identifier, code string, now time.Time) (*Challenge, error) {
	// Single conditional update: the WHERE clause is the whole validity
	// check, so concurrent verifies of the same code serialize on the row
	// and only one sees it unverified.
	row := s.db.QueryRowContext(ctx, `
		UPDATE otp_challenges SET verified = true
		WHERE id = (
			SELECT id FROM otp_challenges
			WHERE identifier = $1 AND code = $2 AND verified = false AND expires_at > $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, identifier, code, expires_at, verified, created_at`,
		identifier, code, now)

	var c Challenge
	err := row.Scan(&c.ID, &c.Identifier, &c.Code, &c.ExpiresAt, &c.Verified, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no live challenge for identifier: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("consume otp challenge: %w", err)
	}
	return &c, nil
}

// DeleteExpired removes challenges past their expiry; run periodically so the
// table does not grow without bound.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired challenges: %w", err)
	}
	return res.RowsAffected()
}
