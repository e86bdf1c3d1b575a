package repl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/halcyonlab/twin/internal/dirty"
	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/session"
)

// cmdOpen opens (or switches to) a section form
func (r *REPL) cmdOpen(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <section> (one of: %s)", sectionNames())
	}

	section, err := profile.ParseSection(args[0])
	if err != nil {
		return err
	}

	s, err := r.manager.Open(r.ctx, section)
	if err != nil {
		return err
	}
	r.current = s

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Editing %s. 'show' lists fields, 'set <field> <value>' edits.\n", green("✓"), section)
	return nil
}

// cmdSections lists all sections and their open/dirty state
func (r *REPL) cmdSections(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Println()
	for _, section := range profile.AllSections() {
		marker := " "
		state := ""
		if s := r.manager.Get(section); s != nil {
			state = green("open")
			if s.Status().Dirty.IsDirty {
				state = yellow("unsaved changes")
			}
			if r.current != nil && r.current.Section() == section {
				marker = ">"
			}
		}
		fmt.Printf(" %s %-10s %s\n", marker, section, state)
	}
	fmt.Println()
	return nil
}

// cmdShow prints the current form's fields
func (r *REPL) cmdShow(args []string) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}

	fields := s.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Printf("\n%s\n", cyan(string(s.Section())+" form"))
	for _, name := range names {
		value := fields[name]
		if isUnanswered(value) {
			fmt.Printf("  %-20s %s\n", name, faint("(unanswered)"))
		} else {
			fmt.Printf("  %-20s %v\n", name, value)
		}
	}
	fmt.Println()
	return nil
}

// cmdSet sets a field on the current form
func (r *REPL) cmdSet(args []string) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: set <field> <value>")
	}

	value := parseValue(strings.Join(args[1:], " "))
	report, err := s.SetField(args[0], value)
	if err != nil {
		return err
	}

	r.printDirtyLine(report)
	return nil
}

// cmdUnset clears a field on the current form
func (r *REPL) cmdUnset(args []string) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: unset <field>")
	}

	report, err := s.UnsetField(args[0])
	if err != nil {
		return err
	}

	r.printDirtyLine(report)
	return nil
}

// cmdDirty shows the unsaved-changes state of the current form
func (r *REPL) cmdDirty(args []string) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}

	report := s.Evaluate()
	r.printDirtyLine(report)
	if report.IsDirty {
		for _, field := range report.ChangedFields {
			fmt.Printf("    changed: %s\n", field)
		}
	}
	return nil
}

// cmdSave saves the current form
func (r *REPL) cmdSave(args []string) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}

	if err := s.Save(r.ctx); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Saved %s\n", green("✓"), s.Section())
	return nil
}

// cmdSaveAll saves every open dirty form
func (r *REPL) cmdSaveAll(args []string) error {
	if err := r.manager.SaveAll(r.ctx); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s All forms saved\n", green("✓"))
	return nil
}

// cmdDiscard reverts the current form
func (r *REPL) cmdDiscard(args []string) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}

	report := s.DiscardChanges()
	fmt.Printf("Reverted %s to its saved state\n", s.Section())
	r.printDirtyLine(report)
	return nil
}

// cmdCompletion shows profile completion scoring
func (r *REPL) cmdCompletion(args []string) error {
	p, err := r.store.GetProfile(r.ctx, r.userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	report := profile.Completion(p, r.weights)

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s %d%%\n\n", cyan("Profile completion:"), report.Overall)
	for _, section := range profile.AllSections() {
		fmt.Printf("  %-10s %3d%%", section, report.Sections[section])
		if missing := report.MissingFields[section]; len(missing) > 0 {
			faint := color.New(color.Faint).SprintFunc()
			fmt.Printf("  %s", faint("missing: "+strings.Join(missing, ", ")))
		}
		fmt.Println()
	}
	fmt.Println()
	return nil
}

// cmdEvents shows recent form diagnostic events
func (r *REPL) cmdEvents(args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("usage: events [count]")
		}
		limit = n
	}

	recent, err := r.store.GetRecentFormEvents(r.ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	if len(recent) == 0 {
		fmt.Println("No events recorded yet")
		return nil
	}

	for _, event := range recent {
		printEvent(event)
	}
	return nil
}

func (r *REPL) requireSession() (*session.FormSession, error) {
	if r.current == nil {
		return nil, fmt.Errorf("no form open; use 'open <section>' first")
	}
	return r.current, nil
}

func (r *REPL) printDirtyLine(report dirty.Report) {
	if report.IsDirty {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("  %s %d field(s) differ from saved state\n", yellow("●"), report.ChangedFieldsCount())
	} else {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("  %s no unsaved changes\n", green("✓"))
	}
}

// printEvent renders one event line, colored by severity
func printEvent(event *events.FormEvent) {
	severity := fmt.Sprintf("%-7s", event.Severity)
	switch event.Severity {
	case events.SeverityError:
		severity = color.New(color.FgRed).Sprint(severity)
	case events.SeverityWarning:
		severity = color.New(color.FgYellow).Sprint(severity)
	default:
		severity = color.New(color.FgGreen).Sprint(severity)
	}

	scope := event.Label
	if scope == "" {
		scope = event.Section
	}

	fmt.Printf("%s %s %-24s %-16s %s\n",
		event.Timestamp.Local().Format("15:04:05"),
		severity,
		event.Type,
		scope,
		event.Message)
}

// parseValue turns REPL input into a typed field value: booleans and
// numbers are recognized, comma-separated input becomes a list, anything
// else stays a string.
func parseValue(raw string) interface{} {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		return list
	}
	return raw
}

// isUnanswered mirrors how completion scoring treats empty form values
func isUnanswered(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case float64:
		return v == 0
	case int:
		return v == 0
	}
	return false
}

func sectionNames() string {
	names := make([]string, 0, len(profile.AllSections()))
	for _, s := range profile.AllSections() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
