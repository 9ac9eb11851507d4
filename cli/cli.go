package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	Manifest      string
	FromClipboard bool
	BaseDir       string
	DryRun        bool
	Lint          bool
	Journal       string
	Undo          bool
	TUI           bool
	NoColor       bool
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	flags := pflag.NewFlagSet("ruleinject", pflag.ContinueOnError)

	// Define flags
	flags.StringVarP(&cfg.Manifest, "manifest", "m", "", "Read the target mapping from a YAML manifest ('-' for stdin) instead of the built-in one.")
	flags.BoolVar(&cfg.FromClipboard, "clipboard", false, "Read the manifest from the clipboard.")
	flags.StringVarP(&cfg.BaseDir, "base-dir", "d", "", "Directory relative target paths are resolved against (default: $SETFARM_REPO or ~/.openclaw/setfarm-repo).")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Report what would be added without writing.")
	flags.BoolVar(&cfg.Lint, "lint", false, "Check that every marker matches its block and exit.")
	flags.StringVar(&cfg.Journal, "journal", "", "Record appended blocks in this file so the run can be undone.")
	flags.BoolVarP(&cfg.Undo, "undo", "u", false, "Remove the blocks appended by the last journaled run.")
	flags.BoolVar(&cfg.TUI, "tui", false, "Show a spinner and a styled summary instead of the line report.")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "Disable coloured output.")

	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ruleinject [flags]")
		fmt.Fprintln(os.Stderr, "\nAppend knowledge blocks to agent files, skipping blocks that are already present.")
		fmt.Fprintln(os.Stderr, "\nExample: ruleinject --dry-run -d ~/.openclaw/setfarm-repo")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// pflag prints its own parse errors; do the same for ours.
	fail := func(format string, a ...interface{}) (*Config, error) {
		err := fmt.Errorf(format, a...)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, err
	}

	if flags.NArg() > 0 {
		return fail("unexpected arguments: %v", flags.Args())
	}

	// Validate mutually exclusive flags
	if cfg.Manifest != "" && cfg.FromClipboard {
		return fail("--manifest and --clipboard are mutually exclusive")
	}
	if cfg.Undo && cfg.Journal == "" {
		return fail("--undo requires --journal")
	}
	if cfg.Undo && (cfg.DryRun || cfg.Lint) {
		return fail("--undo cannot be combined with --dry-run or --lint")
	}

	return cfg, nil
}
