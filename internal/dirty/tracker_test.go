package dirty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/twin/internal/events"
)

// captureSink records emitted events in order.
type captureSink struct {
	events []*events.FormEvent
}

func (c *captureSink) Emit(event *events.FormEvent) {
	c.events = append(c.events, event)
}

func (c *captureSink) types() []events.EventType {
	out := make([]events.EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func newTestTracker(sink events.Sink) *Tracker {
	return New(Config{
		Label:   "health-form",
		UserID:  "user-1",
		Section: "health",
		Sink:    sink,
	})
}

func TestEvaluateBeforeInitialize(t *testing.T) {
	tr := newTestTracker(nil)

	report := tr.Evaluate(map[string]interface{}{"a": 1})

	assert.False(t, report.IsInitialized, "no snapshot captured yet")
	assert.False(t, report.IsDirty, "must not report dirty during the load race")
	assert.Empty(t, report.ChangedFields)
}

func TestCleanThenDirtyThenRevert(t *testing.T) {
	tr := newTestTracker(nil)
	tr.Initialize(map[string]interface{}{"a": 1})

	report := tr.Evaluate(map[string]interface{}{"a": 1})
	assert.False(t, report.IsDirty)
	assert.Empty(t, report.ChangedFields)

	report = tr.Evaluate(map[string]interface{}{"a": 2})
	assert.True(t, report.IsDirty)
	assert.Equal(t, []string{"a"}, report.ChangedFields)
	assert.Equal(t, 1, report.ChangedFieldsCount())

	// User undoes the edit: Dirty -> Clean without any reset.
	report = tr.Evaluate(map[string]interface{}{"a": 1})
	assert.False(t, report.IsDirty)
	assert.Empty(t, report.ChangedFields)
}

func TestInitializeIsIdempotent(t *testing.T) {
	tr := newTestTracker(nil)
	tr.Initialize(map[string]interface{}{"a": 1})

	// A refetch must not re-capture over the baseline while edits are pending.
	tr.Initialize(map[string]interface{}{"a": 99})

	report := tr.Evaluate(map[string]interface{}{"a": 99})
	assert.True(t, report.IsDirty, "second Initialize must be a no-op")
	assert.Equal(t, []string{"a"}, report.ChangedFields)
}

func TestResetReplacesSnapshot(t *testing.T) {
	tr := newTestTracker(nil)
	tr.Initialize(map[string]interface{}{"a": 1})
	require.True(t, tr.Evaluate(map[string]interface{}{"a": 2}).IsDirty)

	tr.Reset(map[string]interface{}{"a": 2})

	report := tr.Evaluate(map[string]interface{}{"a": 2})
	assert.False(t, report.IsDirty, "saved values are the new baseline")
	assert.Empty(t, report.ChangedFields)
}

func TestResetNilUsesLastEvaluatedValues(t *testing.T) {
	tr := newTestTracker(nil)
	tr.Initialize(map[string]interface{}{"a": 1})
	tr.Evaluate(map[string]interface{}{"a": 2, "b": "x"})

	tr.Reset(nil)

	report := tr.Evaluate(map[string]interface{}{"a": 2, "b": "x"})
	assert.False(t, report.IsDirty)
}

func TestSetDirtyManually(t *testing.T) {
	tr := newTestTracker(nil)
	tr.Initialize(map[string]interface{}{"a": 1})
	require.False(t, tr.Evaluate(map[string]interface{}{"a": 1}).IsDirty)

	// Forced dirty even though values match the snapshot.
	tr.SetDirtyManually(true)
	assert.True(t, tr.Report().IsDirty)

	// The next natural evaluation wins over the override.
	report := tr.Evaluate(map[string]interface{}{"a": 1})
	assert.False(t, report.IsDirty)
}

func TestDisabledTrackerAlwaysClean(t *testing.T) {
	tr := New(Config{Label: "readonly-form", Disabled: true})
	tr.Initialize(map[string]interface{}{"a": 1})

	report := tr.Evaluate(map[string]interface{}{"a": 2})
	assert.False(t, report.IsDirty, "disabled tracker suppresses the indicator")
	assert.Empty(t, report.ChangedFields)

	tr.SetEnabled(true)
	assert.True(t, tr.Evaluate(map[string]interface{}{"a": 2}).IsDirty)
}

func TestEmptyFormsDoNotRegisterAsChanges(t *testing.T) {
	tr := newTestTracker(nil)

	// Backend serialized "never touched" as an empty array.
	tr.Initialize(map[string]interface{}{"conditions": []interface{}{"asthma"}, "medications": []interface{}{}})

	report := tr.Evaluate(map[string]interface{}{"conditions": []interface{}{"asthma"}, "medications": []interface{}{}})
	assert.False(t, report.IsDirty)

	// Adding a real value to a previously-empty field is a change.
	tr2 := newTestTracker(nil)
	tr2.Initialize(map[string]interface{}{"allergies": []interface{}{}})
	report = tr2.Evaluate(map[string]interface{}{"allergies": []interface{}{"peanuts"}})
	assert.True(t, report.IsDirty)
	assert.Equal(t, []string{"allergies"}, report.ChangedFields)
}

func TestTransitionEventsFireOnlyOnFlips(t *testing.T) {
	sink := &captureSink{}
	tr := newTestTracker(sink)
	tr.Initialize(map[string]interface{}{"a": 1})

	tr.Evaluate(map[string]interface{}{"a": 1}) // clean -> clean: no event
	tr.Evaluate(map[string]interface{}{"a": 2}) // clean -> dirty
	tr.Evaluate(map[string]interface{}{"a": 3}) // dirty -> dirty: no event
	tr.Evaluate(map[string]interface{}{"a": 1}) // dirty -> clean
	tr.Reset(nil)

	assert.Equal(t, []events.EventType{
		events.EventTypeTrackerInitialized,
		events.EventTypeTrackerBecameDirty,
		events.EventTypeTrackerBecameClean,
		events.EventTypeTrackerReset,
	}, sink.types())
}

func TestTransitionEventCarriesChangedFields(t *testing.T) {
	sink := &captureSink{}
	tr := newTestTracker(sink)
	tr.Initialize(map[string]interface{}{"a": 1, "b": 2})
	tr.Evaluate(map[string]interface{}{"a": 9, "b": 8})

	require.Len(t, sink.events, 2)
	data, err := sink.events[1].GetDirtyTransitionData()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, data.ChangedFields)
	assert.Equal(t, 2, data.FieldCount)
}

func TestTrackerDoesNotAliasCallerMaps(t *testing.T) {
	tr := newTestTracker(nil)
	initial := map[string]interface{}{"a": 1}
	tr.Initialize(initial)

	// Caller mutates its own map after handing it over; the snapshot must
	// be unaffected.
	initial["a"] = 2

	report := tr.Evaluate(map[string]interface{}{"a": 2})
	assert.True(t, report.IsDirty)
}
