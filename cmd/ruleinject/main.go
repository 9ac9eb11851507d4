package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sokinpui/ruleinject/cli"
	"github.com/sokinpui/ruleinject/internal/tui"
	"github.com/sokinpui/ruleinject/internal/ui"
	"github.com/sokinpui/ruleinject/ruleinject"
)

func main() {
	// SETFARM_REPO and OPENCLAW_STATE_DIR may come from a local .env file.
	_ = godotenv.Load()

	cfg, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		// The error has already been printed.
		os.Exit(1)
	}

	styled := !cfg.NoColor && os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(os.Stdout.Fd())
	if !styled {
		ui.DisableColor()
	}

	app, err := ruleinject.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if cfg.TUI {
		runTUI(app)
		return
	}

	app.SetOutput(os.Stdout, styled)
	summary, err := app.Execute()
	if err != nil {
		var detailed *ruleinject.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		if !errors.Is(err, ruleinject.ErrLintIssues) {
			ui.Error("Error: %v", err)
		}
		os.Exit(1)
	}

	switch {
	case cfg.Undo:
		if summary.Message != "" {
			ui.Info("%s", summary.Message)
		}
		ui.PrintUndoSummary(summary.Reverted, summary.Failed)
		if len(summary.Failed) > 0 {
			os.Exit(1)
		}
	case cfg.Lint:
		ui.Success("%s", summary.Message)
	}
}

func runTUI(app *ruleinject.App) {
	p := tea.NewProgram(tui.New(app))
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(tui.Model); ok && m.Failed() {
		os.Exit(1)
	}
}
