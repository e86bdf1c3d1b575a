package config

import (
	"fmt"
	"os"
	"strconv"
)

// EventRetentionConfig holds configuration for form event retention and cleanup
type EventRetentionConfig struct {
	// RetentionDays is the retention period for info/warning events (in days)
	// Events older than this are eligible for deletion; error events are kept
	// until the global limit evicts them
	// Default: 30, Range: 1-365
	RetentionDays int

	// GlobalLimitEvents is the maximum total number of events to keep
	// This is a safety limit to prevent database bloat
	// Default: 50000, Range: 1000-1000000
	GlobalLimitEvents int

	// CleanupIntervalHours is how often to run cleanup (in hours)
	// Default: 24, Range: 1-168 (1 week)
	CleanupIntervalHours int

	// CleanupBatchSize is the number of events to delete per transaction
	// Larger batches = faster cleanup but longer locks
	// Default: 1000, Range: 100-10000
	CleanupBatchSize int

	// CleanupEnabled controls whether automatic cleanup is enabled
	// Default: true
	CleanupEnabled bool

	// CleanupVacuum controls whether to run VACUUM after cleanup
	// VACUUM reclaims disk space but can lock the database
	// Default: false
	CleanupVacuum bool
}

// DefaultEventRetentionConfig returns the default event retention configuration
//
// These defaults are chosen to:
// - Keep a month of form activity for debugging stuck dirty states
// - Cap total database size (50k events is well under 25 MB)
// - Run cleanup daily
// - Use non-blocking cleanup (no VACUUM by default)
func DefaultEventRetentionConfig() EventRetentionConfig {
	return EventRetentionConfig{
		RetentionDays:        30,
		GlobalLimitEvents:    50000,
		CleanupIntervalHours: 24,
		CleanupBatchSize:     1000,
		CleanupEnabled:       true,
		CleanupVacuum:        false,
	}
}

// Validate checks if the configuration has valid values
func (c EventRetentionConfig) Validate() error {
	if c.RetentionDays < 1 || c.RetentionDays > 365 {
		return fmt.Errorf("retention_days must be between 1 and 365 (got %d)", c.RetentionDays)
	}

	if c.GlobalLimitEvents < 1000 {
		return fmt.Errorf("global_limit_events must be at least 1000 (got %d)",
			c.GlobalLimitEvents)
	}
	if c.GlobalLimitEvents > 1000000 {
		return fmt.Errorf("global_limit_events too large (got %d, max 1000000)",
			c.GlobalLimitEvents)
	}

	if c.CleanupIntervalHours < 1 {
		return fmt.Errorf("cleanup_interval_hours must be at least 1 (got %d)",
			c.CleanupIntervalHours)
	}
	if c.CleanupIntervalHours > 168 {
		return fmt.Errorf("cleanup_interval_hours too large (got %d, max 168)",
			c.CleanupIntervalHours)
	}

	if c.CleanupBatchSize < 100 {
		return fmt.Errorf("cleanup_batch_size must be at least 100 (got %d)",
			c.CleanupBatchSize)
	}
	if c.CleanupBatchSize > 10000 {
		return fmt.Errorf("cleanup_batch_size too large (got %d, max 10000)",
			c.CleanupBatchSize)
	}

	return nil
}

// String returns a human-readable representation of the config
func (c EventRetentionConfig) String() string {
	return fmt.Sprintf(
		"EventRetentionConfig{RetentionDays: %d, GlobalLimit: %d, "+
			"CleanupInterval: %dh, BatchSize: %d, Enabled: %t, Vacuum: %t}",
		c.RetentionDays, c.GlobalLimitEvents, c.CleanupIntervalHours,
		c.CleanupBatchSize, c.CleanupEnabled, c.CleanupVacuum,
	)
}

// EventRetentionConfigFromEnv creates an EventRetentionConfig from environment variables,
// falling back to defaults
//
// Environment variables:
//   - TWIN_EVENT_RETENTION_DAYS: Retention period for info/warning events in days (default: 30)
//   - TWIN_EVENT_GLOBAL_LIMIT: Maximum total events (default: 50000)
//   - TWIN_EVENT_CLEANUP_INTERVAL_HOURS: How often to run cleanup in hours (default: 24)
//   - TWIN_EVENT_CLEANUP_BATCH_SIZE: Events to delete per transaction (default: 1000)
//   - TWIN_EVENT_CLEANUP_ENABLED: Enable automatic cleanup (default: true)
//   - TWIN_EVENT_CLEANUP_VACUUM: Run VACUUM after cleanup (default: false)
//
// Returns an error if any environment variable has an invalid value.
func EventRetentionConfigFromEnv() (EventRetentionConfig, error) {
	cfg := DefaultEventRetentionConfig()

	if err := parseEnvInt("TWIN_EVENT_RETENTION_DAYS", &cfg.RetentionDays); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("TWIN_EVENT_GLOBAL_LIMIT", &cfg.GlobalLimitEvents); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("TWIN_EVENT_CLEANUP_INTERVAL_HOURS", &cfg.CleanupIntervalHours); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("TWIN_EVENT_CLEANUP_BATCH_SIZE", &cfg.CleanupBatchSize); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("TWIN_EVENT_CLEANUP_ENABLED", &cfg.CleanupEnabled); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("TWIN_EVENT_CLEANUP_VACUUM", &cfg.CleanupVacuum); err != nil {
		return cfg, err
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid event retention configuration from environment: %w", err)
	}

	return cfg, nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
