// Package repl implements the interactive form shell. Each profile section
// is edited through a form session; the shell surfaces dirty state the same
// way the web client's unsaved-changes banner does.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/session"
	"github.com/halcyonlab/twin/internal/storage"
)

// REPL represents the interactive form shell
type REPL struct {
	store    storage.Storage
	manager  *session.Manager
	current  *session.FormSession
	rl       *readline.Instance
	ctx      context.Context
	userID   string
	weights  map[profile.Section]float64
	logger   *zap.Logger
	commands map[string]CommandHandler

	// exitWarned is set after warning about unsaved changes; the next
	// exit abandons them
	exitWarned bool
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Store  storage.Storage
	UserID string
	// Sink receives form diagnostic events; nil means none are emitted.
	Sink events.Sink
	// Weights overrides completion scoring weights per section.
	Weights map[profile.Section]float64
	Logger  *zap.Logger
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	userID := cfg.UserID
	if userID == "" {
		userID = "default"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &REPL{
		store:    cfg.Store,
		manager:  session.NewManager(userID, cfg.Store, cfg.Sink, logger),
		userID:   userID,
		weights:  cfg.Weights,
		logger:   logger,
		commands: make(map[string]CommandHandler),
	}

	r.registerCommands()

	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	prompt := cyan("twin> ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       "",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	defer r.manager.Close()

	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				// Ctrl+C - just show prompt again
				continue
			} else if err == io.EOF {
				// Ctrl+D - exit
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				// Exit command - graceful shutdown
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

// processInput processes a single line of input
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	if command != "exit" && command != "quit" {
		r.exitWarned = false
	}

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
	r.commands["open"] = r.cmdOpen
	r.commands["sections"] = r.cmdSections
	r.commands["show"] = r.cmdShow
	r.commands["set"] = r.cmdSet
	r.commands["unset"] = r.cmdUnset
	r.commands["dirty"] = r.cmdDirty
	r.commands["save"] = r.cmdSave
	r.commands["saveall"] = r.cmdSaveAll
	r.commands["discard"] = r.cmdDiscard
	r.commands["completion"] = r.cmdCompletion
	r.commands["events"] = r.cmdEvents
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("twin - digital twin profile shell"))
	fmt.Printf("Editing profile for %s\n", r.userID)
	fmt.Println()
	fmt.Println("Type 'open <section>' to start, 'help' for commands, 'exit' to quit")
	fmt.Println()
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Available Commands:"))
	fmt.Println()

	commands := []struct {
		name string
		desc string
	}{
		{"open <section>", "Open a profile section form"},
		{"sections", "List sections and which are open"},
		{"show", "Show the current form's fields"},
		{"set <field> <value>", "Set a field (lists are comma-separated)"},
		{"unset <field>", "Clear a field back to unanswered"},
		{"dirty", "Show unsaved-changes state for the current form"},
		{"save", "Validate and save the current form"},
		{"saveall", "Save every open dirty form"},
		{"discard", "Revert the current form to its saved state"},
		{"completion", "Show profile completion scoring"},
		{"events [n]", "Show recent form diagnostic events"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}

	for _, cmd := range commands {
		fmt.Printf("  %-22s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()

	return nil
}

// cmdExit exits the REPL
func (r *REPL) cmdExit(args []string) error {
	dirtyCount := 0
	for _, section := range r.manager.OpenSections() {
		if s := r.manager.Get(section); s != nil && s.Status().Dirty.IsDirty {
			dirtyCount++
		}
	}
	if dirtyCount > 0 && !r.exitWarned {
		r.exitWarned = true
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s %d form(s) have unsaved changes. 'saveall' first, or 'exit' again to abandon them.\n",
			yellow("Warning:"), dirtyCount)
		return nil
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Goodbye!\n", green("✓"))
	r.rl.Close()
	return io.EOF // Signal to exit the loop
}
