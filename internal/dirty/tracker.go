// Package dirty implements the change detection behind every "unsaved changes"
// affordance in the product. A Tracker owns the last-saved snapshot of a form's
// values and compares normalized live values against it on every evaluation.
//
// The snapshot is captured exactly once and replaced only through Reset. The
// tempting alternative (re-capturing whenever upstream values change) is
// rejected on purpose: a background refetch would silently re-snapshot over a
// user's pending edits and mask them.
package dirty

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/normalize"
)

// Config configures a Tracker.
type Config struct {
	// Label identifies the form screen in diagnostics (e.g. "nutrition-form").
	Label string
	// UserID identifies the profile owner for emitted events.
	UserID string
	// Section is the profile section this tracker watches, for diagnostics.
	Section string
	// Disabled suppresses dirty reporting and skips comparison entirely.
	// Used for read-only and loading states. The zero value is enabled.
	Disabled bool
	// Sink receives diagnostic events; nil means no events are emitted.
	Sink events.Sink
	// Logger receives transition logs; nil means no logging.
	Logger *zap.Logger
}

// Report is the result of an evaluation.
type Report struct {
	// IsDirty reports whether live values differ from the snapshot.
	IsDirty bool
	// ChangedFields are the top-level keys that differ, sorted. Empty when clean.
	ChangedFields []string
	// IsInitialized reports whether a snapshot has been captured. Consumers
	// must check this before showing "unsaved changes" banners: before the
	// initial profile fetch resolves there is nothing to be dirty against.
	IsInitialized bool
}

// ChangedFieldsCount returns the number of changed top-level fields.
func (r Report) ChangedFieldsCount() int {
	return len(r.ChangedFields)
}

// Tracker holds the snapshot and the Clean/Dirty state for one form screen.
// A Tracker is owned by a single form session; it is not goroutine-safe.
type Tracker struct {
	label   string
	userID  string
	section string
	enabled bool
	sink    events.Sink
	logger  *zap.Logger

	initialized bool
	dirty       bool
	snapshot    map[string]interface{}
	lastValues  map[string]interface{}
	changed     []string
}

// New creates a Tracker. It reports not-initialized and not-dirty until
// Initialize has run.
func New(cfg Config) *Tracker {
	sink := cfg.Sink
	if sink == nil {
		sink = events.NopSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		label:   cfg.Label,
		userID:  cfg.UserID,
		section: cfg.Section,
		enabled: !cfg.Disabled,
		sink:    sink,
		logger:  logger,
	}
}

// Initialize captures the snapshot from the given values. It is idempotent:
// calls after the first are no-ops, so a late-arriving refetch cannot clobber
// the baseline. Use Reset to replace the snapshot deliberately.
func (t *Tracker) Initialize(initial map[string]interface{}) {
	if t.initialized {
		return
	}
	t.snapshot = copyValues(initial)
	t.lastValues = copyValues(initial)
	t.initialized = true

	t.logger.Debug("tracker initialized",
		zap.String("label", t.label),
		zap.Int("fields", len(t.snapshot)))
	t.sink.Emit(events.NewSimpleEvent(
		events.EventTypeTrackerInitialized,
		t.userID, t.section, t.label,
		events.SeverityInfo,
		fmt.Sprintf("%s: snapshot captured", t.label)))
}

// IsInitialized reports whether a snapshot has been captured.
func (t *Tracker) IsInitialized() bool {
	return t.initialized
}

// Label returns the diagnostic label this tracker was configured with.
func (t *Tracker) Label() string {
	return t.label
}

// SetEnabled toggles dirty reporting. While disabled, Evaluate reports clean
// and performs no comparison.
func (t *Tracker) SetEnabled(enabled bool) {
	t.enabled = enabled
}

// Evaluate compares current values to the snapshot and returns the dirty state.
// It clears any manual override: an explicit comparison is fresher information
// than a forced flag. Transition events fire only when the boolean flips.
func (t *Tracker) Evaluate(current map[string]interface{}) Report {
	if !t.initialized || !t.enabled {
		return Report{IsInitialized: t.initialized}
	}

	t.lastValues = copyValues(current)

	changed := normalize.ChangedKeys(t.snapshot, current)
	nowDirty := len(changed) > 0

	if nowDirty != t.dirty {
		t.transition(nowDirty, changed)
	}
	t.dirty = nowDirty
	if nowDirty {
		t.changed = changed
	} else {
		t.changed = nil
	}

	return t.Report()
}

// Report returns the current state without re-evaluating. A manual override
// set through SetDirtyManually is reflected here until the next Evaluate or
// Reset.
func (t *Tracker) Report() Report {
	if !t.initialized || !t.enabled {
		return Report{IsInitialized: t.initialized}
	}
	return Report{
		IsDirty:       t.dirty,
		ChangedFields: append([]string(nil), t.changed...),
		IsInitialized: true,
	}
}

// Reset replaces the snapshot and clears the dirty state. Pass nil to snapshot
// the most recently evaluated values. Reset is the caller's acknowledgement of
// a successful save; the tracker does not verify that a save happened.
func (t *Tracker) Reset(newSnapshot map[string]interface{}) {
	if newSnapshot == nil {
		newSnapshot = t.lastValues
	}
	t.snapshot = copyValues(newSnapshot)
	t.lastValues = copyValues(newSnapshot)
	t.initialized = true
	t.dirty = false
	t.changed = nil

	t.logger.Debug("tracker reset", zap.String("label", t.label))
	t.sink.Emit(events.NewSimpleEvent(
		events.EventTypeTrackerReset,
		t.userID, t.section, t.label,
		events.SeverityInfo,
		fmt.Sprintf("%s: snapshot replaced", t.label)))
}

// SetDirtyManually forces the dirty flag, bypassing comparison. The override
// holds until the next Evaluate or Reset. Used when dirtiness is driven by
// state outside the tracked value object (e.g. a sibling toggle).
func (t *Tracker) SetDirtyManually(flag bool) {
	if !t.initialized {
		return
	}
	t.dirty = flag
	if !flag {
		t.changed = nil
	}

	t.logger.Debug("tracker dirty flag forced",
		zap.String("label", t.label),
		zap.Bool("dirty", flag))
	t.sink.Emit(events.NewSimpleEvent(
		events.EventTypeTrackerManualSet,
		t.userID, t.section, t.label,
		events.SeverityInfo,
		fmt.Sprintf("%s: dirty flag forced to %v", t.label, flag)))
}

// transition emits the became_dirty/became_clean diagnostics for a flip.
func (t *Tracker) transition(nowDirty bool, changed []string) {
	eventType := events.EventTypeTrackerBecameClean
	msg := fmt.Sprintf("%s: form reverted to saved state", t.label)
	if nowDirty {
		eventType = events.EventTypeTrackerBecameDirty
		msg = fmt.Sprintf("%s: form has unsaved changes", t.label)
	}

	t.logger.Debug("dirty state transition",
		zap.String("label", t.label),
		zap.Bool("dirty", nowDirty),
		zap.Strings("changed_fields", changed))

	event, err := events.NewDirtyTransitionEvent(
		eventType, t.userID, t.section, t.label, msg,
		events.DirtyTransitionData{ChangedFields: changed, FieldCount: len(changed)})
	if err != nil {
		// Event payloads are plain JSON; this is unreachable in practice.
		return
	}
	t.sink.Emit(event)
}

// copyValues shallow-copies a value map so later caller mutations cannot
// corrupt the snapshot. Nested values are treated as immutable, which holds
// for form-library-produced JSON trees.
func copyValues(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
