package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyonlab/twin/internal/config"
	"github.com/halcyonlab/twin/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a twin profile store in the current directory",
	Long: `Initialize twin by creating a .twin/ directory with a starter config
and an empty SQLite database.

This creates:
  - .twin/config.yaml (commented starter configuration)
  - .twin/twin.db (SQLite database)

Example:
  cd ~/health
  twin init
  twin session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}

		configPath, err := config.WriteDefaultConfigFile(cwd)
		if err != nil {
			return err
		}

		cfg, err := config.LoadAppConfig(cwd)
		if err != nil {
			return err
		}

		// Initialize the database schema by opening and closing it
		ctx := context.Background()
		db, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.DatabasePath})
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		_ = db.Close() // Ignore close error during initialization

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("\n%s Initialized twin profile store\n\n", green("✓"))
		fmt.Printf("  Config:   %s\n", cyan(configPath))
		fmt.Printf("  Database: %s\n", cyan(cfg.DatabasePath))
		fmt.Println()
		fmt.Println("Run 'twin session' to start editing your profile")
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
