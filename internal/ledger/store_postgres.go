package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"harambee/internal/slot"
	"harambee/pkg/platform/sentinel"
)

// PostgresStore persists contributions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const contributionColumns = `id, slot_id, sponsor_id, sponsor_name, amount,
	kind, coalesce(component, ''), payment_status,
	coalesce(gateway_intent_id, ''), created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *Contribution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributions (id, slot_id, sponsor_id, sponsor_name, amount,
			kind, component, payment_status, gateway_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10, $11)`,
		c.ID, c.SlotID, c.SponsorID, c.SponsorName, c.Amount, string(c.Kind),
		string(c.Component), string(c.PaymentStatus), c.GatewayIntentID,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByIntent(ctx context.Context, intentID string) (*Contribution, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE gateway_intent_id = $1`,
		intentID)
	return scanContribution(row)
}

func (s *PostgresStore) ListBySlot(ctx context.Context, slotID string) ([]*Contribution, error) {
	return s.list(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE slot_id = $1 ORDER BY created_at DESC, id`, slotID)
}

func (s *PostgresStore) ListBySponsor(ctx context.Context, sponsorID string) ([]*Contribution, error) {
	return s.list(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE sponsor_id = $1 ORDER BY created_at DESC, id`, sponsorID)
}

func (s *PostgresStore) Finalize(ctx context.Context, intentID string, status PaymentStatus) (*Contribution, bool, error) {
	if !status.Terminal() {
		return nil, false, fmt.Errorf("finalize to %q: %w", status, sentinel.ErrInvalidState)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin finalize: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Status-guarded transition: only a pending row moves. A redelivered
	// event matches zero rows and falls through to the duplicate path.
	row := tx.QueryRowContext(ctx, `
		UPDATE contributions
		SET payment_status = $2, updated_at = now()
		WHERE gateway_intent_id = $1 AND payment_status = 'pending'
		RETURNING `+contributionColumns,
		intentID, string(status))

	c, err := scanContribution(row)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, err
		}
		// Nothing transitioned; distinguish unknown intent from duplicate.
		existing, getErr := s.GetByIntent(ctx, intentID)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}

	if status == PaymentCompleted {
		if _, err := slot.ApplyFundingTx(ctx, tx, c.SlotID, c.Amount); err != nil {
			return nil, false, fmt.Errorf("apply funding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit finalize: %w", err)
	}
	return c, true, nil
}

func (s *PostgresStore) RankSponsors(ctx context.Context, limit int) ([]SponsorRank, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sponsor_id, max(sponsor_name), sum(amount) AS total
		FROM contributions
		WHERE payment_status = 'completed'
		GROUP BY sponsor_id
		ORDER BY total DESC, sponsor_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("rank sponsors: %w", err)
	}
	defer rows.Close()

	var ranks []SponsorRank
	for rows.Next() {
		var r SponsorRank
		if err := rows.Scan(&r.SponsorID, &r.SponsorName, &r.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan sponsor rank: %w", err)
		}
		r.Rank = len(ranks) + 1
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

func (s *PostgresStore) TotalCompleted(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT coalesce(sum(amount), 0) FROM contributions
		WHERE payment_status = 'completed'`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total completed: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) DistinctSponsors(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(DISTINCT sponsor_id) FROM contributions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("distinct sponsors: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]*Contribution, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []*Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContribution(row rowScanner) (*Contribution, error) {
	var c Contribution
	var kind, component, status string
	err := row.Scan(&c.ID, &c.SlotID, &c.SponsorID, &c.SponsorName, &c.Amount,
		&kind, &component, &status, &c.GatewayIntentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contribution not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan contribution: %w", err)
	}
	c.Kind = Kind(kind)
	c.Component = Component(component)
	c.PaymentStatus = PaymentStatus(status)
	return &c, nil
}
