package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/halcyonlab/twin/internal/events"
)

// StoreFormEvent stores a new form event in the database.
func (s *SQLiteStorage) StoreFormEvent(ctx context.Context, event *events.FormEvent) error {
	if !event.Type.IsValid() {
		return fmt.Errorf("invalid event type: %q", event.Type)
	}

	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	query := `
		INSERT INTO form_events (
			id, type, timestamp, user_id, section, label, severity, message, data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.Type,
		event.Timestamp,
		event.UserID,
		event.Section,
		event.Label,
		event.Severity,
		event.Message,
		string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store form event (type=%s, user=%s): %w", event.Type, event.UserID, err)
	}
	return nil
}

// GetFormEvents retrieves events matching the given filter.
func (s *SQLiteStorage) GetFormEvents(ctx context.Context, filter events.EventFilter) ([]*events.FormEvent, error) {
	query := `
		SELECT id, type, timestamp, user_id, section, label, severity, message, data
		FROM form_events
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Section != "" {
		query += " AND section = ?"
		args = append(args, filter.Section)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since)
	}

	// Most recent first
	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query form events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetRecentFormEvents retrieves the most recent events up to the specified limit.
func (s *SQLiteStorage) GetRecentFormEvents(ctx context.Context, limit int) ([]*events.FormEvent, error) {
	query := `
		SELECT id, type, timestamp, user_id, section, label, severity, message, data
		FROM form_events
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent form events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents is a helper function to scan rows into FormEvent structs.
func scanEvents(rows *sql.Rows) ([]*events.FormEvent, error) {
	var result []*events.FormEvent

	for rows.Next() {
		var event events.FormEvent
		var dataJSON string
		var timestamp time.Time

		err := rows.Scan(
			&event.ID,
			&event.Type,
			&timestamp,
			&event.UserID,
			&event.Section,
			&event.Label,
			&event.Severity,
			&event.Message,
			&dataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form event: %w", err)
		}

		event.Timestamp = timestamp

		event.Data = make(map[string]interface{})
		if dataJSON != "" && dataJSON != "{}" && dataJSON != "null" {
			if err := json.Unmarshal([]byte(dataJSON), &event.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
			}
		}

		result = append(result, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating form event rows: %w", err)
	}
	return result, nil
}
