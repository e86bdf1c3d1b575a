package sqlite

import (
	"context"
	"fmt"
	"time"
)

// EventCounts holds event count statistics for monitoring
type EventCounts struct {
	TotalEvents      int
	EventsBySection  map[string]int
	EventsBySeverity map[string]int
	EventsByType     map[string]int
}

// CleanupEventsByAge deletes events older than the retention period.
// Error events are exempt; they are only removed by the global limit.
// Deletions are batched for performance (batchSize events per transaction)
func (s *SQLiteStorage) CleanupEventsByAge(ctx context.Context, retentionDays, batchSize int) (int, error) {
	if retentionDays < 0 {
		return 0, fmt.Errorf("retention days cannot be negative")
	}
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	totalDeleted := 0

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return totalDeleted, ctx.Err()
		default:
		}

		// Delete a batch of expired non-error events
		query := `
			DELETE FROM form_events
			WHERE id IN (
				SELECT id FROM form_events
				WHERE timestamp < ?
				AND severity IN ('info', 'warning')
				ORDER BY timestamp ASC
				LIMIT ?
			)
		`

		result, err := s.db.ExecContext(ctx, query, cutoff, batchSize)
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to execute delete: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to get rows affected: %w", err)
		}

		totalDeleted += int(rowsAffected)

		// If we deleted fewer than batchSize, we're done
		if rowsAffected < int64(batchSize) {
			break
		}
	}

	return totalDeleted, nil
}

// CleanupEventsByGlobalLimit enforces a global event count limit.
// When the total event count exceeds the limit, oldest non-error events are
// deleted first; error events are evicted last, only once nothing else
// remains above the limit
func (s *SQLiteStorage) CleanupEventsByGlobalLimit(ctx context.Context, globalLimit, batchSize int) (int, error) {
	if globalLimit < 1 {
		return 0, fmt.Errorf("global limit must be at least 1")
	}
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	// Get current event count
	var currentCount int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM form_events").Scan(&currentCount)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}

	// If under the limit, nothing to do
	if currentCount <= globalLimit {
		return 0, nil
	}

	eventsToDelete := currentCount - globalLimit
	totalDeleted := 0

	// Two passes: non-error events first, then error events if the limit
	// still cannot hold without them.
	for _, severityFilter := range []string{"severity != 'error'", "severity = 'error'"} {
		for eventsToDelete > 0 {
			// Check context cancellation
			select {
			case <-ctx.Done():
				return totalDeleted, ctx.Err()
			default:
			}

			limitThisBatch := batchSize
			if eventsToDelete < batchSize {
				limitThisBatch = eventsToDelete
			}

			query := fmt.Sprintf(`
				DELETE FROM form_events
				WHERE id IN (
					SELECT id FROM form_events
					WHERE %s
					ORDER BY timestamp ASC
					LIMIT ?
				)
			`, severityFilter)

			result, err := s.db.ExecContext(ctx, query, limitThisBatch)
			if err != nil {
				return totalDeleted, fmt.Errorf("failed to execute delete: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return totalDeleted, fmt.Errorf("failed to get rows affected: %w", err)
			}

			totalDeleted += int(rowsAffected)
			eventsToDelete -= int(rowsAffected)

			// Fewer than requested means this severity class is exhausted
			if rowsAffected < int64(limitThisBatch) {
				break
			}
		}
	}

	return totalDeleted, nil
}

// GetEventCounts returns event count statistics for monitoring
func (s *SQLiteStorage) GetEventCounts(ctx context.Context) (*EventCounts, error) {
	counts := &EventCounts{
		EventsBySection:  make(map[string]int),
		EventsBySeverity: make(map[string]int),
		EventsByType:     make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM form_events").Scan(&counts.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get total event count: %w", err)
	}

	groupings := []struct {
		column string
		target map[string]int
	}{
		{"section", counts.EventsBySection},
		{"severity", counts.EventsBySeverity},
		{"type", counts.EventsByType},
	}

	for _, g := range groupings {
		query := fmt.Sprintf(`
			SELECT %s, COUNT(*)
			FROM form_events
			GROUP BY %s
		`, g.column, g.column)

		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to query events by %s: %w", g.column, err)
		}

		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan %s count: %w", g.column, err)
			}
			g.target[key] = count
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("error iterating %s counts: %w", g.column, err)
		}
		_ = rows.Close()
	}

	return counts, nil
}
