package events

import (
	"time"
)

// EventType represents the type of event that occurred in the form-state layer.
type EventType string

const (
	// Tracker lifecycle events
	// EventTypeTrackerInitialized indicates a dirty-state tracker captured its first snapshot
	EventTypeTrackerInitialized EventType = "tracker_initialized"
	// EventTypeTrackerBecameDirty indicates live values diverged from the snapshot
	EventTypeTrackerBecameDirty EventType = "tracker_became_dirty"
	// EventTypeTrackerBecameClean indicates live values converged back to the snapshot
	EventTypeTrackerBecameClean EventType = "tracker_became_clean"
	// EventTypeTrackerReset indicates the snapshot was replaced and dirty state cleared
	EventTypeTrackerReset EventType = "tracker_reset"
	// EventTypeTrackerManualSet indicates the dirty flag was forced outside the comparison flow
	EventTypeTrackerManualSet EventType = "tracker_manual_set"

	// Form session events
	// EventTypeSessionOpened indicates a form session was opened for a profile section
	EventTypeSessionOpened EventType = "session_opened"
	// EventTypeSessionSaved indicates a form session persisted its pending changes
	EventTypeSessionSaved EventType = "session_saved"
	// EventTypeSessionSaveFailed indicates a save attempt failed validation or persistence
	EventTypeSessionSaveFailed EventType = "session_save_failed"
	// EventTypeSessionClosed indicates a form session was discarded
	EventTypeSessionClosed EventType = "session_closed"

	// Meal-plan pipeline events
	// EventTypePipelineStageChanged indicates the meal-plan pipeline advanced a stage
	EventTypePipelineStageChanged EventType = "pipeline_stage_changed"
	// EventTypePipelineReset indicates the meal-plan pipeline was cleared
	EventTypePipelineReset EventType = "pipeline_reset"

	// Retention events
	// EventTypeEventCleanupCompleted indicates an event cleanup cycle completed
	EventTypeEventCleanupCompleted EventType = "event_cleanup_completed"
)

// IsValid checks if the event type value is valid.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeTrackerInitialized, EventTypeTrackerBecameDirty,
		EventTypeTrackerBecameClean, EventTypeTrackerReset, EventTypeTrackerManualSet,
		EventTypeSessionOpened, EventTypeSessionSaved, EventTypeSessionSaveFailed,
		EventTypeSessionClosed, EventTypePipelineStageChanged, EventTypePipelineReset,
		EventTypeEventCleanupCompleted:
		return true
	}
	return false
}

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates potentially problematic events
	SeverityWarning EventSeverity = "warning"
	// SeverityError indicates error events
	SeverityError EventSeverity = "error"
)

// FormEvent represents a diagnostic event emitted by the form-state layer.
// Events are stored for troubleshooting save-flow bugs ("why did the banner
// not show?") and surfaced by `twin tail`.
type FormEvent struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// UserID identifies the profile owner the event belongs to
	UserID string `json:"user_id"`
	// Section is the profile section involved, if any (identity, nutrition, ...)
	Section string `json:"section,omitempty"`
	// Label is the tracker label that emitted the event (matches the form screen)
	Label string `json:"label,omitempty"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data"`
}

// DirtyTransitionData contains structured data for became_dirty/became_clean events.
type DirtyTransitionData struct {
	// ChangedFields are the top-level keys that differ from the snapshot
	ChangedFields []string `json:"changed_fields"`
	// FieldCount is len(ChangedFields), denormalized for cheap queries
	FieldCount int `json:"field_count"`
}

// SaveData contains structured data for session_saved events.
type SaveData struct {
	// Section is the profile section that was saved
	Section string `json:"section"`
	// ChangedFields are the fields that were pending at save time
	ChangedFields []string `json:"changed_fields"`
	// DurationMS is how long the save took, in milliseconds
	DurationMS int64 `json:"duration_ms"`
}

// StageChangeData contains structured data for pipeline_stage_changed events.
type StageChangeData struct {
	// From is the stage the pipeline left
	From string `json:"from"`
	// To is the stage the pipeline entered
	To string `json:"to"`
}

// EventFilter describes criteria for querying stored events.
type EventFilter struct {
	// UserID restricts results to one profile owner (empty = all)
	UserID string
	// Section restricts results to one profile section (empty = all)
	Section string
	// Type restricts results to one event type (empty = all)
	Type EventType
	// Since restricts results to events at or after this time (zero = all)
	Since time.Time
	// Limit caps the number of results (0 = no cap)
	Limit int
}
