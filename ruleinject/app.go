package ruleinject

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/sokinpui/ruleinject/cli"
	"github.com/sokinpui/ruleinject/internal/fs"
	"github.com/sokinpui/ruleinject/internal/injector"
	"github.com/sokinpui/ruleinject/internal/manifest"
	"github.com/sokinpui/ruleinject/internal/report"
	"github.com/sokinpui/ruleinject/internal/source"
	"github.com/sokinpui/ruleinject/internal/state"
	"github.com/sokinpui/ruleinject/internal/ui"
	"github.com/sokinpui/ruleinject/model"
)

// ErrLintIssues is returned by a lint run that found problems.
var ErrLintIssues = errors.New("manifest has lint issues")

// App orchestrates the entire application logic.
type App struct {
	cfg            *cli.Config
	sourceProvider *source.SourceProvider
	out            io.Writer
	styled         bool
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	return &App{
		cfg:            cfg,
		sourceProvider: source.New(),
		out:            os.Stdout,
	}, nil
}

// SetOutput directs the run report to w, optionally styled.
func (a *App) SetOutput(w io.Writer, styled bool) {
	a.out = w
	a.styled = styled
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	if a.cfg.Undo {
		return a.undoLastOperation()
	}

	m, err := a.loadMapping()
	if err != nil {
		return model.Summary{}, err
	}

	if a.cfg.Lint {
		return a.lint(m)
	}
	return a.inject(m)
}

// loadMapping returns the manifest named by the flags, or the built-in one.
func (a *App) loadMapping() (model.Mapping, error) {
	var (
		src source.Manifest
		err error
	)
	switch {
	case a.cfg.FromClipboard:
		src, err = a.sourceProvider.FromClipboard()
	case a.cfg.Manifest != "":
		src, err = a.sourceProvider.FromPath(a.cfg.Manifest)
	default:
		return manifest.Default()
	}
	if err != nil {
		return model.Mapping{}, err
	}

	m, err := manifest.Parse(src.Data, src.FS)
	if err != nil {
		return model.Mapping{}, fmt.Errorf("%s: %w", src.From, err)
	}
	return m, nil
}

func (a *App) lint(m model.Mapping) (model.Summary, error) {
	issues := manifest.Lint(m)
	if len(issues) == 0 {
		return model.Summary{Message: "Manifest is consistent."}, nil
	}

	ui.Warning("Found %d issue(s) in '%s':", len(issues), m.Name)
	for _, issue := range issues {
		ui.Path("- %s", issue)
	}
	return model.Summary{}, ErrLintIssues
}

// inject runs the injector over m, journaling appends when requested.
func (a *App) inject(m model.Mapping) (model.Summary, error) {
	resolver, err := fs.NewPathResolver(ResolveBaseDir(a.cfg.BaseDir, m))
	if err != nil {
		return model.Summary{}, err
	}

	reporter := report.New(a.out, report.WithStyle(a.styled), report.WithDryRun(a.cfg.DryRun))

	var opts []injector.Option
	if a.cfg.DryRun {
		opts = append(opts, injector.WithDryRun())
	}

	var (
		journal  *state.Manager
		recorder state.Recorder
	)
	if a.cfg.Journal != "" && !a.cfg.DryRun {
		journal, err = state.New(a.cfg.Journal)
		if err != nil {
			return model.Summary{}, fmt.Errorf("failed to open journal: %w", err)
		}
		opts = append(opts, injector.WithAppendHook(recorder.Record))
	}

	summary, runErr := injector.New(resolver, reporter, opts...).Apply(m)

	// Appends that happened before a failure are journaled too, so that
	// a partial run can still be undone.
	if journal != nil {
		if err := journal.Write(recorder.Operations()); err != nil {
			if runErr == nil {
				return summary, err
			}
			ui.Error("%v", err)
		}
	}
	return summary, runErr
}

// undoLastOperation handles the undo logic.
func (a *App) undoLastOperation() (model.Summary, error) {
	journal, err := state.New(a.cfg.Journal)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to open journal: %w", err)
	}

	ops := journal.GetOperationsToUndo()
	if len(ops) == 0 {
		return model.Summary{Message: "No operation to undo."}, nil
	}

	// The entry is kept when nothing could be reverted, so it can be retried.
	reverted, failed := state.Undo(ops)
	if len(reverted) > 0 {
		if err := journal.MarkUndone(); err != nil {
			return model.Summary{Reverted: reverted, Failed: failed}, err
		}
	}
	return model.Summary{
		Reverted: reverted,
		Failed:   failed,
		Message:  "Undid last run.",
	}, nil
}
