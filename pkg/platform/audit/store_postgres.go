package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists the trail in PostgreSQL. Rows are append-only; there
// is no update or delete path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, action, actor_id, slot_id,
			intent_id, amount, detail)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			NULLIF($7, ''), NULLIF($8, ''))`,
		e.ID, e.OccurredAt, string(e.Action), e.ActorID, e.SlotID,
		e.IntentID, e.Amount, e.Detail)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, action, coalesce(actor_id, ''),
			coalesce(slot_id, ''), coalesce(intent_id, ''),
			coalesce(amount, ''), coalesce(detail, '')
		FROM audit_events
		ORDER BY occurred_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.ID, &e.OccurredAt, &action, &e.ActorID,
			&e.SlotID, &e.IntentID, &e.Amount, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		out = append(out, e)
	}
	return out, rows.Err()
}
