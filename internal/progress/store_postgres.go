package progress

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists progress updates in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed progress store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *Update) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress_updates (id, slot_id, phase, description, progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.SlotID, string(u.Phase), u.Description, u.Progress, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert progress update: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySlot(ctx context.Context, slotID string) ([]*Update, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slot_id, phase, description, progress, created_at
		FROM progress_updates
		WHERE slot_id = $1 ORDER BY created_at DESC, id DESC`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list progress updates: %w", err)
	}
	defer rows.Close()

	var out []*Update
	for rows.Next() {
		var u Update
		var phase string
		if err := rows.Scan(&u.ID, &u.SlotID, &phase, &u.Description, &u.Progress, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan progress update: %w", err)
		}
		u.Phase = Phase(phase)
		out = append(out, &u)
	}
	return out, rows.Err()
}
