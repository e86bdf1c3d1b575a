package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyonlab/twin/internal/events"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Watch form diagnostic events",
	Long: `Display recent form events and optionally follow live updates.

Shows events from the form_events table:
- Tracker initializations, dirty/clean transitions, resets
- Session opens, saves, failed saves, closes
- Pipeline stage changes
- Cleanup runs

Useful for debugging stuck "unsaved changes" banners.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		section, _ := cmd.Flags().GetString("section")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := context.Background()
		if err := ensureStore(ctx); err != nil {
			return err
		}

		if follow {
			return runTailFollow(ctx, section, limit)
		}
		return runTailOnce(ctx, section, limit)
	},
}

func init() {
	tailCmd.Flags().BoolP("follow", "f", false, "Follow mode - watch for live updates (Ctrl+C to stop)")
	tailCmd.Flags().StringP("section", "s", "", "Filter events by profile section")
	tailCmd.Flags().IntP("limit", "n", 20, "Number of recent events to show initially")
	rootCmd.AddCommand(tailCmd)
}

// runTailOnce shows recent events and exits
func runTailOnce(ctx context.Context, section string, limit int) error {
	recent, err := fetchEvents(ctx, section, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if len(recent) == 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("\n%s No events found\n\n", yellow("∅"))
		return nil
	}

	// Display events oldest first
	for i := len(recent) - 1; i >= 0; i-- {
		displayEvent(recent[i])
	}
	return nil
}

// runTailFollow shows recent events and continues polling for new ones
func runTailFollow(ctx context.Context, section string, initialLimit int) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("\n%s Following live updates (Ctrl+C to stop)...\n\n", cyan("tail"))

	recent, err := fetchEvents(ctx, section, initialLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	cursor := newEventCursor()
	for _, event := range cursor.advance(recent) {
		displayEvent(event)
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			fmt.Println("\nStopped following")
			return nil
		case <-ticker.C:
			newEvents, err := fetchEventsSince(ctx, section, cursor.since)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nError fetching new events: %v\n", err)
				continue
			}

			for _, event := range cursor.advance(newEvents) {
				displayEvent(event)
			}
		}
	}
}

// eventCursor tracks the follow position. SQLite stores timestamps at coarser
// precision than time.Time, so polling strictly after the last timestamp can
// repeat or skip boundary events; the cursor re-reads from the last timestamp
// inclusive and filters out events already shown by ID.
type eventCursor struct {
	since time.Time
	seen  map[string]struct{}
}

func newEventCursor() *eventCursor {
	return &eventCursor{seen: make(map[string]struct{})}
}

// advance takes a poll result ordered newest first and returns the events not
// yet shown, oldest first.
func (c *eventCursor) advance(batch []*events.FormEvent) []*events.FormEvent {
	var fresh []*events.FormEvent
	for i := len(batch) - 1; i >= 0; i-- {
		event := batch[i]
		if _, dup := c.seen[event.ID]; dup {
			continue
		}
		if event.Timestamp.After(c.since) {
			// Older boundary IDs can no longer reappear in a query
			// from the new timestamp.
			c.since = event.Timestamp
			c.seen = make(map[string]struct{})
		}
		c.seen[event.ID] = struct{}{}
		fresh = append(fresh, event)
	}
	return fresh
}

// fetchEvents retrieves recent events, optionally filtered by section
func fetchEvents(ctx context.Context, section string, limit int) ([]*events.FormEvent, error) {
	if section != "" {
		return store.GetFormEvents(ctx, events.EventFilter{Section: section, Limit: limit})
	}
	return store.GetRecentFormEvents(ctx, limit)
}

// fetchEventsSince retrieves events at or after the given timestamp
func fetchEventsSince(ctx context.Context, section string, since time.Time) ([]*events.FormEvent, error) {
	filter := events.EventFilter{
		Since: since,
		Limit: 100,
	}
	if section != "" {
		filter.Section = section
	}
	return store.GetFormEvents(ctx, filter)
}

// displayEvent formats and prints a single event with color
func displayEvent(event *events.FormEvent) {
	var severityColor *color.Color
	switch event.Severity {
	case events.SeverityWarning:
		severityColor = color.New(color.FgYellow)
	case events.SeverityError:
		severityColor = color.New(color.FgRed)
	default:
		severityColor = color.New(color.FgCyan)
	}

	timestamp := event.Timestamp.Local().Format("15:04:05")
	eventType := color.New(color.FgMagenta).Sprint(event.Type)

	scope := event.Label
	if scope == "" && event.Section != "" {
		scope = event.Section
	}
	if scope != "" {
		scope = " [" + scope + "]"
	}

	fmt.Printf("%s %s %s%s %s\n",
		timestamp,
		severityColor.Sprintf("%-7s", event.Severity),
		eventType,
		scope,
		event.Message)
}
