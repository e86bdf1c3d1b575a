package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeIsValid(t *testing.T) {
	tests := []struct {
		name     string
		et       EventType
		expected bool
	}{
		{"tracker initialized", EventTypeTrackerInitialized, true},
		{"became dirty", EventTypeTrackerBecameDirty, true},
		{"became clean", EventTypeTrackerBecameClean, true},
		{"reset", EventTypeTrackerReset, true},
		{"manual set", EventTypeTrackerManualSet, true},
		{"session saved", EventTypeSessionSaved, true},
		{"pipeline stage changed", EventTypePipelineStageChanged, true},
		{"cleanup completed", EventTypeEventCleanupCompleted, true},
		{"unknown type", EventType("tracker_exploded"), false},
		{"empty string", EventType(""), false},
		{"uppercase", EventType("TRACKER_RESET"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.et.IsValid(); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, expected %v", tt.et, got, tt.expected)
			}
		})
	}
}

func TestDirtyTransitionEventRoundTrip(t *testing.T) {
	event, err := NewDirtyTransitionEvent(
		EventTypeTrackerBecameDirty,
		"user-1", "nutrition", "nutrition-form",
		"form became dirty",
		DirtyTransitionData{ChangedFields: []string{"allergies", "diet_style"}, FieldCount: 2},
	)
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	assert.Equal(t, EventTypeTrackerBecameDirty, event.Type)
	assert.Equal(t, SeverityInfo, event.Severity)

	data, err := event.GetDirtyTransitionData()
	require.NoError(t, err)
	assert.Equal(t, []string{"allergies", "diet_style"}, data.ChangedFields)
	assert.Equal(t, 2, data.FieldCount)
}

func TestSaveEventCarriesSection(t *testing.T) {
	event, err := NewSaveEvent("user-1", "fasting-form", "saved fasting section", SaveData{
		Section:       "fasting",
		ChangedFields: []string{"window_hours"},
		DurationMS:    12,
	})
	require.NoError(t, err)
	assert.Equal(t, "fasting", event.Section, "section should be lifted from data")

	data, err := event.GetSaveData()
	require.NoError(t, err)
	assert.Equal(t, int64(12), data.DurationMS)
}

// recordingStore captures stored events for assertions.
type recordingStore struct {
	mu     sync.Mutex
	events []*FormEvent
	err    error
}

func (r *recordingStore) StoreFormEvent(_ context.Context, event *FormEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingStore) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestStoreSinkRateLimitsTransitionChatter(t *testing.T) {
	store := &recordingStore{}
	// 1 transition per second with burst 2: the flood below must mostly drop.
	sink := NewStoreSink(store, nil, 1)

	for i := 0; i < 50; i++ {
		sink.Emit(NewSimpleEvent(EventTypeTrackerBecameDirty, "user-1", "health", "health-form", SeverityInfo, "dirty"))
	}

	assert.Less(t, store.count(), 50, "limiter should drop most transition events")
	assert.Equal(t, int64(50-store.count()), sink.Dropped())
}

func TestStoreSinkNeverDropsSessionEvents(t *testing.T) {
	store := &recordingStore{}
	sink := NewStoreSink(store, nil, 1)

	for i := 0; i < 20; i++ {
		sink.Emit(NewSimpleEvent(EventTypeSessionSaved, "user-1", "health", "health-form", SeverityInfo, "saved"))
	}

	assert.Equal(t, 20, store.count(), "session events bypass the limiter")
	assert.Equal(t, int64(0), sink.Dropped())
}

func TestStoreSinkSwallowsStoreErrors(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	sink := NewStoreSink(store, nil, 0)

	// Must not panic; diagnostics never break the form.
	sink.Emit(NewSimpleEvent(EventTypeSessionOpened, "user-1", "identity", "identity-form", SeverityInfo, "opened"))
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recordingStore{}
	b := &recordingStore{}
	sink := NewMultiSink(NewStoreSink(a, nil, 0), nil, NewStoreSink(b, nil, 0))

	sink.Emit(NewSimpleEvent(EventTypeSessionClosed, "user-1", "cycle", "cycle-form", SeverityInfo, "closed"))

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}
