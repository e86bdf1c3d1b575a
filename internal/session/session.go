// Package session binds profile section forms to dirty trackers and the
// storage layer. A FormSession is the unit the REPL and the CLI operate on:
// it owns the live field values for one section, knows what the persisted
// baseline looks like, and refuses to save rows that fail validation.
package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/halcyonlab/twin/internal/dirty"
	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/storage"
)

// FormSession is an editing session for a single profile section.
// It is owned by a single caller and is not goroutine-safe.
type FormSession struct {
	userID  string
	section profile.Section
	store   storage.Storage
	tracker *dirty.Tracker
	sink    events.Sink
	logger  *zap.Logger

	// values holds the live form fields, keyed by JSON field name
	values map[string]interface{}
	// baseline mirrors what is persisted; DiscardChanges reverts to it
	baseline map[string]interface{}
	closed   bool
}

// Config configures a FormSession.
type Config struct {
	UserID  string
	Section profile.Section
	Store   storage.Storage
	// Sink receives diagnostic events; nil means no events are emitted.
	Sink events.Sink
	// Logger receives session logs; nil means no logging.
	Logger *zap.Logger
	// ReadOnly opens the session with dirty tracking disabled.
	ReadOnly bool
}

// Status is a snapshot of the session's tracking state.
type Status struct {
	UserID  string
	Section profile.Section
	Dirty   dirty.Report
}

// Open loads the persisted section and starts a tracking session against it.
// A section that was never saved starts from an empty record.
func Open(ctx context.Context, cfg Config) (*FormSession, error) {
	if cfg.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !cfg.Section.IsValid() {
		return nil, fmt.Errorf("invalid section: %q", cfg.Section)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = events.NopSink{}
	}

	record, err := cfg.Store.GetSection(ctx, cfg.UserID, cfg.Section)
	if err != nil {
		return nil, fmt.Errorf("failed to load section %s: %w", cfg.Section, err)
	}

	s := &FormSession{
		userID:  cfg.UserID,
		section: cfg.Section,
		store:   cfg.Store,
		sink:    sink,
		logger:  logger,
		values:  record.Fields(),
	}
	s.baseline = copyValues(s.values)

	s.tracker = dirty.New(dirty.Config{
		Label:    string(cfg.Section) + "-form",
		UserID:   cfg.UserID,
		Section:  string(cfg.Section),
		Disabled: cfg.ReadOnly,
		Sink:     sink,
		Logger:   logger,
	})
	s.tracker.Initialize(s.values)

	sink.Emit(events.NewSimpleEvent(events.EventTypeSessionOpened,
		cfg.UserID, string(cfg.Section), s.tracker.Label(),
		events.SeverityInfo, fmt.Sprintf("opened %s form session", cfg.Section)))

	logger.Debug("form session opened",
		zap.String("user_id", cfg.UserID),
		zap.String("section", string(cfg.Section)))

	return s, nil
}

// Section returns the profile section this session edits.
func (s *FormSession) Section() profile.Section { return s.section }

// UserID returns the profile owner.
func (s *FormSession) UserID() string { return s.userID }

// Fields returns a copy of the live form values.
func (s *FormSession) Fields() map[string]interface{} {
	return copyValues(s.values)
}

// SetField updates a single form field and re-evaluates dirty state.
// Unknown field names are rejected so typos surface immediately.
func (s *FormSession) SetField(name string, value interface{}) (dirty.Report, error) {
	if _, ok := s.baseline[name]; !ok {
		return s.tracker.Report(), fmt.Errorf("unknown field %q for section %s", name, s.section)
	}
	s.values[name] = value
	return s.tracker.Evaluate(s.values), nil
}

// SetFields updates several form fields at once, then re-evaluates.
func (s *FormSession) SetFields(fields map[string]interface{}) (dirty.Report, error) {
	for name := range fields {
		if _, ok := s.baseline[name]; !ok {
			return s.tracker.Report(), fmt.Errorf("unknown field %q for section %s", name, s.section)
		}
	}
	for name, value := range fields {
		s.values[name] = value
	}
	return s.tracker.Evaluate(s.values), nil
}

// UnsetField clears a form field back to "no answer".
func (s *FormSession) UnsetField(name string) (dirty.Report, error) {
	return s.SetField(name, nil)
}

// Status reports the current tracking state without re-comparing.
func (s *FormSession) Status() Status {
	return Status{
		UserID:  s.userID,
		Section: s.section,
		Dirty:   s.tracker.Report(),
	}
}

// Evaluate re-compares the live values against the snapshot.
func (s *FormSession) Evaluate() dirty.Report {
	return s.tracker.Evaluate(s.values)
}

// MarkDirty forces the dirty flag, for flows that mutate outside SetField.
func (s *FormSession) MarkDirty(flag bool) {
	s.tracker.SetDirtyManually(flag)
}

// Save validates the live values, persists them, and rebaselines the
// tracker. The values stay untouched on failure so the user can fix the
// offending field and retry.
func (s *FormSession) Save(ctx context.Context) error {
	report := s.tracker.Evaluate(s.values)
	start := time.Now()

	record, err := profile.DecodeSection(s.section, s.values)
	if err != nil {
		s.emitSaveFailed(err)
		return fmt.Errorf("invalid %s form: %w", s.section, err)
	}

	if err := s.store.SaveSection(ctx, s.userID, record); err != nil {
		s.emitSaveFailed(err)
		return fmt.Errorf("failed to save section %s: %w", s.section, err)
	}

	// Rebaseline: the persisted state is the new snapshot
	s.values = record.Fields()
	s.baseline = copyValues(s.values)
	s.tracker.Reset(s.values)

	event, err := events.NewSaveEvent(s.userID, s.tracker.Label(),
		fmt.Sprintf("saved %s form", s.section),
		events.SaveData{
			Section:       string(s.section),
			ChangedFields: report.ChangedFields,
			DurationMS:    time.Since(start).Milliseconds(),
		})
	if err != nil {
		s.logger.Warn("failed to build save event", zap.Error(err))
	} else {
		s.sink.Emit(event)
	}

	s.logger.Info("form session saved",
		zap.String("user_id", s.userID),
		zap.String("section", string(s.section)),
		zap.Int("changed_fields", report.ChangedFieldsCount()))
	return nil
}

func (s *FormSession) emitSaveFailed(cause error) {
	event := events.NewSimpleEvent(events.EventTypeSessionSaveFailed,
		s.userID, string(s.section), s.tracker.Label(),
		events.SeverityError, cause.Error())
	s.sink.Emit(event)
}

// Reload discards the live values and re-reads the persisted section.
func (s *FormSession) Reload(ctx context.Context) error {
	record, err := s.store.GetSection(ctx, s.userID, s.section)
	if err != nil {
		return fmt.Errorf("failed to reload section %s: %w", s.section, err)
	}
	s.values = record.Fields()
	s.baseline = copyValues(s.values)
	s.tracker.Reset(s.values)
	return nil
}

// DiscardChanges reverts the live values to the last saved baseline.
func (s *FormSession) DiscardChanges() dirty.Report {
	s.values = copyValues(s.baseline)
	return s.tracker.Evaluate(s.values)
}

// Close emits the closing event. Further use of the session is a bug.
func (s *FormSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.sink.Emit(events.NewSimpleEvent(events.EventTypeSessionClosed,
		s.userID, string(s.section), s.tracker.Label(),
		events.SeverityInfo, fmt.Sprintf("closed %s form session", s.section)))
}

func copyValues(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
