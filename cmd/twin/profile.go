package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyonlab/twin/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect the stored profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [section]",
	Short: "Show stored profile sections",
	Long: `Print the saved profile, or a single section.

Examples:
  twin profile show             # All sections
  twin profile show nutrition   # One section`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensureStore(ctx); err != nil {
			return err
		}

		sections := profile.AllSections()
		if len(args) == 1 {
			section, err := profile.ParseSection(args[0])
			if err != nil {
				return err
			}
			sections = []profile.Section{section}
		}

		p, err := store.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		fmt.Printf("\nProfile: %s\n", cyan(userID))
		if !p.UpdatedAt.IsZero() {
			fmt.Printf("Last saved: %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}

		for _, section := range sections {
			record, err := p.Record(section)
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", cyan(string(section)))
			printFields(record.Fields(), faint)
		}
		fmt.Println()
		return nil
	},
}

var profileCompletionCmd = &cobra.Command{
	Use:   "completion",
	Short: "Show profile completion scoring",
	Long: `Score how much of the profile has been filled in.

The overall percentage weights sections per the section_weights config;
unanswered fields are listed per section so users know what is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensureStore(ctx); err != nil {
			return err
		}

		p, err := store.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		report := profile.Completion(p, sectionWeights())

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s %d%%\n\n", cyan("Profile completion:"), report.Overall)
		for _, section := range profile.AllSections() {
			bar := completionBar(report.Sections[section])
			fmt.Printf("  %-10s %s %3d%%\n", section, bar, report.Sections[section])
			if missing := report.MissingFields[section]; len(missing) > 0 {
				faint := color.New(color.Faint).SprintFunc()
				fmt.Printf("             %s\n", faint("missing: "+strings.Join(missing, ", ")))
			}
		}
		fmt.Println()
		return nil
	},
}

// printFields prints a field map sorted by name, marking empty values
func printFields(fields map[string]interface{}, faint func(...interface{}) string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fields[name]
		switch v := value.(type) {
		case nil:
			fmt.Printf("  %-20s %s\n", name, faint("-"))
		case string:
			if v == "" {
				fmt.Printf("  %-20s %s\n", name, faint("-"))
			} else {
				fmt.Printf("  %-20s %s\n", name, v)
			}
		default:
			fmt.Printf("  %-20s %v\n", name, value)
		}
	}
}

// completionBar renders a ten-slot progress bar
func completionBar(percent int) string {
	filled := percent / 10
	green := color.New(color.FgGreen).SprintFunc()
	return green(strings.Repeat("█", filled)) + strings.Repeat("░", 10-filled)
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileCompletionCmd)
	rootCmd.AddCommand(profileCmd)
}
