package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyonlab/twin/internal/events"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up old form events",
	Long: `Delete old form events according to retention policy.

Executes two cleanup strategies in sequence:
  1. Time-based: Delete info/warning events older than the retention period
  2. Global: Enforce the total event count limit (error events go last)

Configuration comes from .twin/config.yaml and TWIN_EVENT_* environment
variables. Default retention: 30 days, 50k events total.

Examples:
  twin cleanup             # Run cleanup with configured policy
  twin cleanup --vacuum    # Run cleanup and reclaim disk space`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vacuum, _ := cmd.Flags().GetBool("vacuum")

		// Long-running deletes get a generous timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := ensureStore(ctx); err != nil {
			return err
		}
		retentionCfg := appCfg.Retention

		fmt.Printf("Event Retention Configuration:\n")
		fmt.Printf("  Retention: %d days\n", retentionCfg.RetentionDays)
		fmt.Printf("  Global limit: %d events\n", retentionCfg.GlobalLimitEvents)
		fmt.Printf("  Batch size: %d events/txn\n", retentionCfg.CleanupBatchSize)
		fmt.Println()

		beforeCounts, err := store.GetEventCounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to get event counts: %w", err)
		}
		fmt.Printf("Current state:\n")
		fmt.Printf("  Total events: %s\n", formatNumber(beforeCounts.TotalEvents))
		fmt.Println()

		startTime := time.Now()
		totalDeleted := 0

		// 1. Time-based cleanup
		fmt.Printf("Running time-based cleanup (>%d days)...\n", retentionCfg.RetentionDays)
		ageDeleted, err := store.CleanupEventsByAge(ctx,
			retentionCfg.RetentionDays,
			retentionCfg.CleanupBatchSize)
		if err != nil {
			return fmt.Errorf("time-based cleanup failed: %w", err)
		}
		fmt.Printf("  Deleted %s events\n", formatNumber(ageDeleted))
		totalDeleted += ageDeleted

		// 2. Global limit cleanup
		fmt.Printf("\nRunning global limit cleanup (limit: %d events)...\n",
			retentionCfg.GlobalLimitEvents)
		globalDeleted, err := store.CleanupEventsByGlobalLimit(ctx,
			retentionCfg.GlobalLimitEvents,
			retentionCfg.CleanupBatchSize)
		if err != nil {
			return fmt.Errorf("global limit cleanup failed: %w", err)
		}
		fmt.Printf("  Deleted %s events\n", formatNumber(globalDeleted))
		totalDeleted += globalDeleted

		afterCounts, countErr := store.GetEventCounts(ctx)

		elapsed := time.Since(startTime)
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Cleanup complete\n", green("✓"))
		fmt.Printf("  Events deleted: %s\n", formatNumber(totalDeleted))
		if countErr != nil {
			estimated := beforeCounts.TotalEvents - totalDeleted
			if estimated < 0 {
				estimated = 0
			}
			fmt.Printf("  Events remaining: ~%s (estimated)\n", formatNumber(estimated))
		} else {
			fmt.Printf("  Events remaining: %s\n", formatNumber(afterCounts.TotalEvents))
		}
		fmt.Printf("  Time taken: %s\n", elapsed.Round(time.Millisecond))

		// Record the run so it shows up in twin tail
		event := events.NewSimpleEvent(events.EventTypeEventCleanupCompleted,
			userID, "", "cleanup", events.SeverityInfo,
			fmt.Sprintf("deleted %d events in %s", totalDeleted, elapsed.Round(time.Millisecond)))
		if err := store.StoreFormEvent(ctx, event); err != nil {
			fmt.Printf("  (failed to record cleanup event: %v)\n", err)
		}

		if vacuum {
			fmt.Printf("\nRunning VACUUM to reclaim disk space...\n")
			if err := store.VacuumDatabase(ctx); err != nil {
				return fmt.Errorf("VACUUM failed: %w", err)
			}
			fmt.Printf("%s VACUUM complete\n", green("✓"))
		} else {
			fmt.Printf("\nNote: Use --vacuum to reclaim disk space\n")
		}
		return nil
	},
}

func init() {
	cleanupCmd.Flags().Bool("vacuum", false, "Run VACUUM after cleanup to reclaim disk space")
	rootCmd.AddCommand(cleanupCmd)
}

// formatNumber formats an integer with thousands separators
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
