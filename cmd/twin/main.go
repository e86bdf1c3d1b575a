package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/halcyonlab/twin/internal/config"
	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/storage"
)

var (
	// Global flags
	userID string
	dbPath string

	// Shared state initialized in ensureStore
	appCfg *config.AppConfig
	logger *zap.Logger
	store  storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "twin",
	Short: "Digital twin profile tracker",
	Long: `twin manages the digital twin profile: the per-user health, nutrition,
fasting, cycle and training data that coaching plans are generated from.

Profile sections are edited through form sessions that track unsaved
changes the same way the web client does. Diagnostic events from the
trackers land in a local SQLite database for debugging.

Run 'twin init' once per directory, then 'twin session' to edit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
		if store != nil {
			_ = store.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "default", "Profile owner ID")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides config)")
}

// loadConfig loads .twin/config.yaml from the working directory and builds
// the logger. Safe to call more than once.
func loadConfig() error {
	if appCfg != nil {
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.LoadAppConfig(cwd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	l, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	appCfg = cfg
	logger = l
	return nil
}

// ensureStore opens the database, loading configuration first if needed.
func ensureStore(ctx context.Context) error {
	if store != nil {
		return nil
	}
	if err := loadConfig(); err != nil {
		return err
	}

	s, err := storage.NewStorage(ctx, &storage.Config{Path: appCfg.DatabasePath})
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", appCfg.DatabasePath, err)
	}
	store = s
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// newSink builds the event pipeline: structured logs plus rate-limited
// persistence of form events.
func newSink() events.Sink {
	return events.NewMultiSink(
		events.NewLogSink(logger),
		events.NewStoreSink(store, logger, 5),
	)
}

// sectionWeights converts the config file's string-keyed weights into
// typed section keys, dropping unknown names with a warning.
func sectionWeights() map[profile.Section]float64 {
	if len(appCfg.SectionWeights) == 0 {
		return nil
	}
	weights := make(map[profile.Section]float64, len(appCfg.SectionWeights))
	for name, weight := range appCfg.SectionWeights {
		section, err := profile.ParseSection(name)
		if err != nil {
			logger.Warn("ignoring unknown section in section_weights", zap.String("section", name))
			continue
		}
		weights[section] = weight
	}
	return weights
}
