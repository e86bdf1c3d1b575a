package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/halcyonlab/twin/internal/repl"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start the interactive profile form shell",
	Long: `Start an interactive shell for editing profile sections.

Each section (identity, nutrition, health, fasting, cycle, training) is
edited through a form session that tracks unsaved changes. The shell
shows exactly which fields differ from the saved state and refuses to
persist invalid rows.

Type 'help' in the shell for available commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensureStore(ctx); err != nil {
			return err
		}

		r, err := repl.New(&repl.Config{
			Store:   store,
			UserID:  userID,
			Sink:    newSink(),
			Weights: sectionWeights(),
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		return r.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
