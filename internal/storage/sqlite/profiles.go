package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/halcyonlab/twin/internal/profile"
)

// SaveSection upserts one profile section's payload as canonical JSON.
func (s *SQLiteStorage) SaveSection(ctx context.Context, userID string, record profile.Record) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid %s section: %w", record.Section(), err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s section: %w", record.Section(), err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profile_sections (user_id, section, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, section) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, userID, string(record.Section()), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save %s section for %s: %w", record.Section(), userID, err)
	}
	return nil
}

// GetSection loads one profile section. A user who never saved the section
// gets the empty record: a fresh profile starts blank, not missing.
// The stored row passes back through the profile decoder, so schema drift in
// persisted payloads is caught here rather than inside the form layer.
func (s *SQLiteStorage) GetSection(ctx context.Context, userID string, section profile.Section) (profile.Record, error) {
	if !section.IsValid() {
		return nil, fmt.Errorf("unknown profile section: %q", section)
	}

	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM profile_sections WHERE user_id = ? AND section = ?
	`, userID, string(section)).Scan(&data)
	if err == sql.ErrNoRows {
		return profile.NewRecord(section)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s section for %s: %w", section, userID, err)
	}

	var row map[string]interface{}
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, fmt.Errorf("corrupt %s section payload for %s: %w", section, userID, err)
	}
	record, err := profile.DecodeSection(section, row)
	if err != nil {
		return nil, fmt.Errorf("stored %s section failed validation for %s: %w", section, userID, err)
	}
	return record, nil
}

// GetProfile assembles the full profile from its stored sections.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p := &profile.Profile{UserID: userID}

	rows, err := s.db.QueryContext(ctx, `
		SELECT section, data, updated_at FROM profile_sections WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sectionName, data string
		var updatedAt time.Time
		if err := rows.Scan(&sectionName, &data, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile section: %w", err)
		}

		section, err := profile.ParseSection(sectionName)
		if err != nil {
			return nil, fmt.Errorf("profile for %s: %w", userID, err)
		}

		var row map[string]interface{}
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, fmt.Errorf("corrupt %s section payload for %s: %w", section, userID, err)
		}
		record, err := profile.DecodeSection(section, row)
		if err != nil {
			return nil, fmt.Errorf("stored %s section failed validation for %s: %w", section, userID, err)
		}
		if err := installRecord(p, record); err != nil {
			return nil, err
		}
		if updatedAt.After(p.UpdatedAt) {
			p.UpdatedAt = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return p, nil
}

// installRecord copies a decoded record into its slot on the profile.
func installRecord(p *profile.Profile, record profile.Record) error {
	switch r := record.(type) {
	case *profile.Identity:
		p.Identity = *r
	case *profile.Nutrition:
		p.Nutrition = *r
	case *profile.Health:
		p.Health = *r
	case *profile.Fasting:
		p.Fasting = *r
	case *profile.Cycle:
		p.Cycle = *r
	case *profile.Training:
		p.Training = *r
	default:
		return fmt.Errorf("unhandled record type %T", record)
	}
	return nil
}
