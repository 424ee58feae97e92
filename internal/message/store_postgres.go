package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"harambee/pkg/platform/sentinel"
)

// PostgresStore persists messages in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed message store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const messageColumns = `id, sender_id, receiver_id, slot_id, content, is_read, created_at`

func (s *PostgresStore) Create(ctx context.Context, m *Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, slot_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SenderID, m.ReceiverID, m.SlotID, m.Content, m.IsRead, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySlot(ctx context.Context, slotID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE slot_id = $1 ORDER BY created_at, id`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SlotID,
			&m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, id, recipientID string) (*Message, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE messages SET is_read = true
		WHERE id = $1 AND receiver_id = $2
		RETURNING `+messageColumns, id, recipientID)

	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SlotID,
		&m.Content, &m.IsRead, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	return &m, nil
}
