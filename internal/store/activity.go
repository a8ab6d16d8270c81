package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ActivityEvent is one row of the append-only activity log.
type ActivityEvent struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Log appends one event. userID may be nil for system events.
func (s *ActivityStore) Log(eventType, message string, userID *int64) error {
	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: *userID, Valid: true}
	}
	_, err := s.db.Exec(
		`INSERT INTO activity_log (user_id, event_type, message) VALUES (?, ?, ?)`,
		uid, eventType, message,
	)
	if err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}

// ListRecent returns the newest events, most recent first.
func (s *ActivityStore) ListRecent(limit int) ([]ActivityEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, event_type, message, created_at
		 FROM activity_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var events []ActivityEvent
	for rows.Next() {
		var e ActivityEvent
		var uid sql.NullInt64
		if err := rows.Scan(&e.ID, &uid, &e.EventType, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		if uid.Valid {
			e.UserID = &uid.Int64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
