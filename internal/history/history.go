// Package history journals every push notification the bot attempts.
// The journal is write-mostly and is never used to rebuild subscriptions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Delivery is one notification attempt.
type Delivery struct {
	ID          string    `json:"id"`
	Recipient   string    `json:"recipient"`
	MatchID     string    `json:"matchId"`
	Fingerprint string    `json:"fingerprint"`
	Body        string    `json:"body"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

type Store interface {
	Record(ctx context.Context, d Delivery) error
	Recent(ctx context.Context, limit int) ([]Delivery, error)
}

var _ Store = (*SQLStore)(nil)

type SQLStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Record(ctx context.Context, d Delivery) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, recipient, match_id, fingerprint, body, status, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Recipient, d.MatchID, d.Fingerprint, d.Body, string(d.Status), nullable(d.Error), d.SentAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record delivery %s: %w", d.ID, err)
	}
	return nil
}

// Recent returns the latest deliveries, newest first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient, match_id, fingerprint, body, status, error, sent_at
		FROM deliveries
		ORDER BY sent_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var (
			d      Delivery
			status string
			errMsg sql.NullString
			sentAt int64
		)
		if err := rows.Scan(&d.ID, &d.Recipient, &d.MatchID, &d.Fingerprint, &d.Body, &status, &errMsg, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		d.Status = Status(status)
		d.Error = errMsg.String
		d.SentAt = time.UnixMilli(sentAt).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
