package storage

import (
	"context"

	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/storage/sqlite"
)

// Storage defines the interface for profile and event persistence backends.
type Storage interface {
	// Profile sections - typed section payloads keyed by user
	SaveSection(ctx context.Context, userID string, record profile.Record) error
	GetSection(ctx context.Context, userID string, section profile.Section) (profile.Record, error)
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)

	// Form events - diagnostic events from trackers, sessions and the pipeline
	StoreFormEvent(ctx context.Context, event *events.FormEvent) error
	GetFormEvents(ctx context.Context, filter events.EventFilter) ([]*events.FormEvent, error)
	GetRecentFormEvents(ctx context.Context, limit int) ([]*events.FormEvent, error)

	// Event cleanup - retention policy enforcement
	CleanupEventsByAge(ctx context.Context, retentionDays, batchSize int) (int, error)
	CleanupEventsByGlobalLimit(ctx context.Context, globalLimit, batchSize int) (int, error)
	GetEventCounts(ctx context.Context) (*sqlite.EventCounts, error)
	VacuumDatabase(ctx context.Context) error

	// Config
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
}

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path
	// Default: ".twin/twin.db"
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Path: ".twin/twin.db",
	}
}

// NewStorage creates a new SQLite storage backend.
// The ctx parameter is currently unused but kept for API consistency.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = ".twin/twin.db"
	}
	return sqlite.New(cfg.Path)
}
