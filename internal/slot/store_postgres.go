package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"harambee/pkg/platform/sentinel"
)

// PostgresStore persists slots in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed slot store and seeds the
// capacity counter row.
func NewPostgres(ctx context.Context, db *sql.DB, capacity int) (*PostgresStore, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO slot_capacity (id, used, capacity)
		VALUES (1, (SELECT count(*) FROM slots), $1)
		ON CONFLICT (id) DO UPDATE SET capacity = EXCLUDED.capacity`,
		capacity)
	if err != nil {
		return nil, fmt.Errorf("seed slot capacity: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

const slotColumns = `id, owner_id, name, age, county, constituency, ward, story,
	coalesce(dream, ''), target_amount, current_amount, status, license_type,
	program_type, training_progress, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, slot *Slot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create slot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The counter row-lock serializes concurrent creators; the guarded
	// increment is the capacity check.
	res, err := tx.ExecContext(ctx,
		`UPDATE slot_capacity SET used = used + 1 WHERE id = 1 AND used < capacity`)
	if err != nil {
		return fmt.Errorf("reserve slot capacity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve slot capacity: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("slot ceiling reached: %w", sentinel.ErrCapacity)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO slots (id, owner_id, name, age, county, constituency, ward,
			story, dream, target_amount, current_amount, status, license_type,
			program_type, training_progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		slot.ID, slot.OwnerID, slot.Name, slot.Age, slot.County, slot.Constituency,
		slot.Ward, slot.Story, slot.Dream, slot.TargetAmount, slot.CurrentAmount,
		string(slot.Status), string(slot.LicenseType), string(slot.ProgramType),
		slot.TrainingProgress, slot.CreatedAt, slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create slot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Slot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
	return scanSlot(row)
}

func (s *PostgresStore) GetByOwner(ctx context.Context, ownerID string) (*Slot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE owner_id = $1 LIMIT 1`, ownerID)
	return scanSlot(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Slot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+slotColumns+` FROM slots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []*Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}

func (s *PostgresStore) NextAvailable(ctx context.Context) (*Slot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+slotColumns+` FROM slots
		WHERE current_amount < target_amount
		ORDER BY created_at, id
		LIMIT 1`)
	return scanSlot(row)
}

func (s *PostgresStore) Update(ctx context.Context, slot *Slot) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE slots SET
			name = $2, age = $3, county = $4, constituency = $5, ward = $6,
			story = $7, dream = $8, status = $9, license_type = $10,
			training_progress = $11, updated_at = now()
		WHERE id = $1`,
		slot.ID, slot.Name, slot.Age, slot.County, slot.Constituency, slot.Ward,
		slot.Story, slot.Dream, string(slot.Status), string(slot.LicenseType),
		slot.TrainingProgress)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("slot %s not found: %w", slot.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ApplyFunding(ctx context.Context, id string, amount decimal.Decimal) (*Slot, error) {
	return applyFunding(ctx, s.db, id, amount)
}

// ApplyFundingTx applies a funding increment inside a caller-owned
// transaction. The ledger store uses it to move contribution status and slot
// total in one commit.
func ApplyFundingTx(ctx context.Context, tx *sql.Tx, id string, amount decimal.Decimal) (*Slot, error) {
	return applyFunding(ctx, tx, id, amount)
}

// applyFunding runs against either the pool or a ledger transaction so the
// reconciliation path can move contribution status and slot total together.
func applyFunding(ctx context.Context, q queryer, id string, amount decimal.Decimal) (*Slot, error) {
	row := q.QueryRowContext(ctx, `
		UPDATE slots SET
			current_amount = current_amount + $2,
			status = CASE
				WHEN status IN ('in_training', 'active') THEN status
				WHEN current_amount + $2 >= target_amount THEN 'fully_funded'
				WHEN current_amount + $2 > 0 THEN 'partially_funded'
				ELSE 'available'
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+slotColumns,
		id, amount)
	return scanSlot(row)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM slots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountActive(ctx context.Context, threshold int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM slots WHERE training_progress >= $1`, threshold).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active slots: %w", err)
	}
	return n, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*Slot, error) {
	var slot Slot
	var status, license, program string
	err := row.Scan(&slot.ID, &slot.OwnerID, &slot.Name, &slot.Age, &slot.County,
		&slot.Constituency, &slot.Ward, &slot.Story, &slot.Dream,
		&slot.TargetAmount, &slot.CurrentAmount, &status, &license, &program,
		&slot.TrainingProgress, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("slot not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan slot: %w", err)
	}
	slot.Status = Status(status)
	slot.LicenseType = LicenseType(license)
	slot.ProgramType = ProgramType(program)
	return &slot, nil
}
