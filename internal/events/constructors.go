package events

import (
	"time"

	"github.com/google/uuid"
)

// NewDirtyTransitionEvent creates a FormEvent for a Clean/Dirty transition with type-safe data.
func NewDirtyTransitionEvent(eventType EventType, userID, section, label, message string, data DirtyTransitionData) (*FormEvent, error) {
	event := &FormEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		UserID:    userID,
		Section:   section,
		Label:     label,
		Severity:  SeverityInfo,
		Message:   message,
	}
	if err := event.SetDirtyTransitionData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewSaveEvent creates a FormEvent for a completed save with type-safe data.
func NewSaveEvent(userID, label, message string, data SaveData) (*FormEvent, error) {
	event := &FormEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeSessionSaved,
		Timestamp: time.Now(),
		UserID:    userID,
		Section:   data.Section,
		Label:     label,
		Severity:  SeverityInfo,
		Message:   message,
	}
	if err := event.SetSaveData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewStageChangeEvent creates a FormEvent for a pipeline stage transition with type-safe data.
func NewStageChangeEvent(userID, message string, data StageChangeData) (*FormEvent, error) {
	event := &FormEvent{
		ID:        uuid.New().String(),
		Type:      EventTypePipelineStageChanged,
		Timestamp: time.Now(),
		UserID:    userID,
		Severity:  SeverityInfo,
		Message:   message,
	}
	if err := event.SetStageChangeData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewSimpleEvent creates a FormEvent with no structured data (opened, closed, reset, ...).
func NewSimpleEvent(eventType EventType, userID, section, label string, severity EventSeverity, message string) *FormEvent {
	return &FormEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		UserID:    userID,
		Section:   section,
		Label:     label,
		Severity:  severity,
		Message:   message,
		Data:      make(map[string]interface{}),
	}
}
