package message

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("message not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, m Message) (Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Read = false
	m.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id,sender_id,sender_role,recipient_id,recipient_role,body,is_read,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.SenderID, m.SenderRole, m.RecipientID, m.RecipientRole, m.Body, m.Read, m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// Conversation returns the thread between two participants, oldest first.
func (s *SQLStore) Conversation(ctx context.Context, a, b string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,sender_id,sender_role,recipient_id,recipient_role,body,is_read,created_at
		 FROM messages
		 WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
		 ORDER BY created_at`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// Inbox returns messages addressed to a user, newest first.
func (s *SQLStore) Inbox(ctx context.Context, userID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,sender_id,sender_role,recipient_id,recipient_role,body,is_read,created_at
		 FROM messages WHERE recipient_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *SQLStore) MarkRead(ctx context.Context, id, recipientID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_read=$1 WHERE id=$2 AND recipient_id=$3`, true, id, recipientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id=$1 AND is_read=$2`, userID, false).Scan(&n)
	return n, err
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderRole, &m.RecipientID, &m.RecipientRole,
			&m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
