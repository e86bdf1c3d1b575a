package events

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sink receives diagnostic events from trackers, sessions and the pipeline.
// Emit must not block the caller for long: trackers run on every render tick.
type Sink interface {
	Emit(event *FormEvent)
}

// NopSink discards all events.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(*FormEvent) {}

// LogSink writes events to a structured logger. The tracker label travels as a
// field so one log stream can serve every form screen.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink backed by the given logger.
// A nil logger yields a no-op sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Emit implements Sink.
func (s *LogSink) Emit(event *FormEvent) {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.String("label", event.Label),
	}
	if event.Section != "" {
		fields = append(fields, zap.String("section", event.Section))
	}
	if len(event.Data) > 0 {
		fields = append(fields, zap.Any("data", event.Data))
	}

	switch event.Severity {
	case SeverityError:
		s.logger.Error(event.Message, fields...)
	case SeverityWarning:
		s.logger.Warn(event.Message, fields...)
	default:
		s.logger.Debug(event.Message, fields...)
	}
}

// EventStore is the subset of the storage interface a StoreSink needs.
// Declared here so storage can depend on events without a cycle.
type EventStore interface {
	StoreFormEvent(ctx context.Context, event *FormEvent) error
}

// StoreSink persists events. Dirty/clean transition chatter is rate limited so
// a user mashing a toggle cannot flood the event log; session, reset and
// cleanup events are always written. Dropped writes are counted, not silent.
type StoreSink struct {
	store   EventStore
	logger  *zap.Logger
	limiter *rate.Limiter
	dropped atomic.Int64
	timeout time.Duration
}

// NewStoreSink creates a persisting sink. perSecond caps the rate of stored
// transition events; 0 means unlimited.
func NewStoreSink(store EventStore, logger *zap.Logger, perSecond float64) *StoreSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if perSecond > 0 {
		// Allow short bursts: a form screen evaluates several fields per tick.
		limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
	}
	return &StoreSink{
		store:   store,
		logger:  logger,
		limiter: limiter,
		timeout: 2 * time.Second,
	}
}

// Dropped returns how many transition events were discarded by the limiter.
func (s *StoreSink) Dropped() int64 {
	return s.dropped.Load()
}

// Emit implements Sink.
func (s *StoreSink) Emit(event *FormEvent) {
	if s.limiter != nil && isTransitionChatter(event.Type) && !s.limiter.Allow() {
		s.dropped.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.StoreFormEvent(ctx, event); err != nil {
		// Diagnostics must never break the form; log and move on.
		s.logger.Warn("failed to store form event",
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

// isTransitionChatter reports whether an event type may be dropped under load.
func isTransitionChatter(t EventType) bool {
	return t == EventTypeTrackerBecameDirty || t == EventTypeTrackerBecameClean
}

// MultiSink fans an event out to several sinks in order.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks; nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiSink{sinks: out}
}

// Emit implements Sink.
func (m *MultiSink) Emit(event *FormEvent) {
	for _, s := range m.sinks {
		s.Emit(event)
	}
}
