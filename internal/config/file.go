package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig is the resolved application configuration.
type AppConfig struct {
	// DatabasePath is the SQLite database file path
	DatabasePath string

	// LogLevel is the zap log level name (debug/info/warn/error)
	LogLevel string

	// SectionWeights overrides completion scoring weights per section.
	// Sections not listed keep equal weight; a zero weight excludes a
	// section from the overall score.
	SectionWeights map[string]float64

	// Retention is the event retention policy, after file overrides
	Retention EventRetentionConfig
}

// ConfigFile represents the structure of .twin/config.yaml
type ConfigFile struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Log level (debug/info/warn/error)
	LogLevel string `yaml:"log_level"`

	// Completion scoring weights keyed by section name
	SectionWeights map[string]float64 `yaml:"section_weights"`

	// Event retention overrides
	Events EventsConfig `yaml:"events"`
}

// DatabaseConfig defines database settings in the config file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EventsConfig defines event retention settings in the config file.
// Zero values mean "keep the default".
type EventsConfig struct {
	RetentionDays        int   `yaml:"retention_days"`
	GlobalLimit          int   `yaml:"global_limit"`
	CleanupIntervalHours int   `yaml:"cleanup_interval_hours"`
	CleanupBatchSize     int   `yaml:"cleanup_batch_size"`
	CleanupEnabled       *bool `yaml:"cleanup_enabled"`
	CleanupVacuum        *bool `yaml:"cleanup_vacuum"`
}

// DefaultAppConfig returns the default application configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		DatabasePath:   filepath.Join(".twin", "twin.db"),
		LogLevel:       "info",
		SectionWeights: nil,
		Retention:      DefaultEventRetentionConfig(),
	}
}

// LoadAppConfig loads configuration from .twin/config.yaml under projectRoot.
// A missing file yields the defaults; environment variables override the
// retention settings last.
func LoadAppConfig(projectRoot string) (*AppConfig, error) {
	config := DefaultAppConfig()

	configPath := filepath.Join(projectRoot, ".twin", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		var configFile ConfigFile
		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}

		configFile.apply(config)
	}

	// Environment variables win over the file
	retention, err := EventRetentionConfigFromEnv()
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(&config.Retention, retention)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// apply overrides the defaults with file settings.
func (cf *ConfigFile) apply(config *AppConfig) {
	if cf.Database.Path != "" {
		config.DatabasePath = cf.Database.Path
	}
	if cf.LogLevel != "" {
		config.LogLevel = cf.LogLevel
	}
	if len(cf.SectionWeights) > 0 {
		config.SectionWeights = cf.SectionWeights
	}
	if cf.Events.RetentionDays > 0 {
		config.Retention.RetentionDays = cf.Events.RetentionDays
	}
	if cf.Events.GlobalLimit > 0 {
		config.Retention.GlobalLimitEvents = cf.Events.GlobalLimit
	}
	if cf.Events.CleanupIntervalHours > 0 {
		config.Retention.CleanupIntervalHours = cf.Events.CleanupIntervalHours
	}
	if cf.Events.CleanupBatchSize > 0 {
		config.Retention.CleanupBatchSize = cf.Events.CleanupBatchSize
	}
	if cf.Events.CleanupEnabled != nil {
		config.Retention.CleanupEnabled = *cf.Events.CleanupEnabled
	}
	if cf.Events.CleanupVacuum != nil {
		config.Retention.CleanupVacuum = *cf.Events.CleanupVacuum
	}
}

// applyEnvOverrides copies env-derived retention fields that differ from the
// defaults onto dest. Env variables that were never set leave dest alone.
func applyEnvOverrides(dest *EventRetentionConfig, fromEnv EventRetentionConfig) {
	defaults := DefaultEventRetentionConfig()
	if fromEnv.RetentionDays != defaults.RetentionDays {
		dest.RetentionDays = fromEnv.RetentionDays
	}
	if fromEnv.GlobalLimitEvents != defaults.GlobalLimitEvents {
		dest.GlobalLimitEvents = fromEnv.GlobalLimitEvents
	}
	if fromEnv.CleanupIntervalHours != defaults.CleanupIntervalHours {
		dest.CleanupIntervalHours = fromEnv.CleanupIntervalHours
	}
	if fromEnv.CleanupBatchSize != defaults.CleanupBatchSize {
		dest.CleanupBatchSize = fromEnv.CleanupBatchSize
	}
	if fromEnv.CleanupEnabled != defaults.CleanupEnabled {
		dest.CleanupEnabled = fromEnv.CleanupEnabled
	}
	if fromEnv.CleanupVacuum != defaults.CleanupVacuum {
		dest.CleanupVacuum = fromEnv.CleanupVacuum
	}
}

// Validate checks if the configuration has valid values
func (c *AppConfig) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error (got %q)", c.LogLevel)
	}

	for section, weight := range c.SectionWeights {
		if weight < 0 {
			return fmt.Errorf("section weight for %q cannot be negative (got %v)", section, weight)
		}
	}

	if err := c.Retention.Validate(); err != nil {
		return fmt.Errorf("invalid event retention configuration: %w", err)
	}
	return nil
}

// WriteDefaultConfigFile writes a commented starter config to
// .twin/config.yaml under projectRoot. Errors if the file already exists.
func WriteDefaultConfigFile(projectRoot string) (string, error) {
	dir := filepath.Join(projectRoot, ".twin")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, fmt.Errorf("config file already exists: %s", configPath)
	}

	content := `# twin configuration
database:
  path: .twin/twin.db

# debug / info / warn / error
log_level: info

# Completion scoring weights per section. Omit for equal weights;
# a zero weight excludes the section from the overall score.
# section_weights:
#   identity: 2
#   cycle: 0

events:
  retention_days: 30
  global_limit: 50000
  cleanup_interval_hours: 24
  cleanup_batch_size: 1000
  cleanup_enabled: true
  cleanup_vacuum: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
