package ruleinject_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sokinpui/ruleinject/cli"
	"github.com/sokinpui/ruleinject/internal/ui"
	"github.com/sokinpui/ruleinject/ruleinject"
)

// newRepo creates a base directory holding the given agent files.
func newRepo(t *testing.T, files ...string) string {
	t.Helper()
	base := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(base, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# Agent\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

func newApp(t *testing.T, cfg *cli.Config) (*ruleinject.App, *bytes.Buffer) {
	t.Helper()
	old := ui.Out
	ui.Out = io.Discard
	t.Cleanup(func() { ui.Out = old })

	app, err := ruleinject.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	var out bytes.Buffer
	app.SetOutput(&out, false)
	return app, &out
}

func TestExecuteDefaultManifest(t *testing.T) {
	base := newRepo(t,
		"workflows/bug-fix/agents/fixer/AGENTS.md",
		"agents/shared/setup/AGENTS.md",
	)

	app, out := newApp(t, &cli.Config{BaseDir: base})
	summary, err := app.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if summary.TotalAdded != 4 {
		t.Errorf("expected 4 blocks added, got %d", summary.TotalAdded)
	}

	report := out.String()
	for _, line := range []string{
		"[OK] bug-fix/fixer: Added Systematic Debugging Methodology, Incident Response Patterns\n",
		"[OK] shared/setup: Added Monitoring & Observability Rules, Deployment Strategy Rules\n",
		"[SKIP] Not found: " + filepath.Join(base, "workflows/feature-dev/agents/developer/AGENTS.md") + "\n",
		"\n=== aitmpl agent integration complete: 4 rule blocks added ===\n",
	} {
		if !strings.Contains(report, line) {
			t.Errorf("report is missing %q:\n%s", line, report)
		}
	}

	fixer, _ := os.ReadFile(filepath.Join(base, "workflows/bug-fix/agents/fixer/AGENTS.md"))
	if !strings.HasPrefix(string(fixer), "# Agent\n\n\n## Systematic Debugging Methodology") {
		t.Errorf("unexpected fixer content:\n%s", fixer)
	}
}

func TestExecuteJournalAndUndo(t *testing.T) {
	base := newRepo(t, "workflows/feature-dev/agents/planner/AGENTS.md")
	journal := filepath.Join(t.TempDir(), "ruleinject", "journal")
	planner := filepath.Join(base, "workflows/feature-dev/agents/planner/AGENTS.md")

	app, _ := newApp(t, &cli.Config{BaseDir: base, Journal: journal})
	if _, err := app.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	content, _ := os.ReadFile(planner)
	if !strings.Contains(string(content), "Task Decomposition Framework") {
		t.Fatal("block was not appended")
	}

	undo, _ := newApp(t, &cli.Config{Journal: journal, Undo: true})
	summary, err := undo.Execute()
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if len(summary.Reverted) != 1 || len(summary.Failed) != 0 {
		t.Errorf("unexpected undo summary %+v", summary)
	}
	content, _ = os.ReadFile(planner)
	if string(content) != "# Agent\n" {
		t.Errorf("undo left %q", content)
	}

	summary, err = undo.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Message != "No operation to undo." {
		t.Errorf("unexpected message %q", summary.Message)
	}
}

func TestExecuteUndoKeepsEntryWhenNothingReverts(t *testing.T) {
	base := newRepo(t, "workflows/feature-dev/agents/planner/AGENTS.md")
	journal := filepath.Join(t.TempDir(), "journal")
	planner := filepath.Join(base, "workflows/feature-dev/agents/planner/AGENTS.md")

	app, _ := newApp(t, &cli.Config{BaseDir: base, Journal: journal})
	if _, err := app.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	edited, _ := os.ReadFile(planner)
	if err := os.WriteFile(planner, append(edited, "manual edit\n"...), 0644); err != nil {
		t.Fatal(err)
	}

	undo, _ := newApp(t, &cli.Config{Journal: journal, Undo: true})
	summary, err := undo.Execute()
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if len(summary.Reverted) != 0 || len(summary.Failed) != 1 {
		t.Fatalf("unexpected undo summary %+v", summary)
	}

	// Restore the file as the run left it; the entry can still be undone.
	if err := os.WriteFile(planner, edited, 0644); err != nil {
		t.Fatal(err)
	}
	summary, err = undo.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Reverted) != 1 || len(summary.Failed) != 0 {
		t.Errorf("retry did not revert: %+v", summary)
	}
	content, _ := os.ReadFile(planner)
	if string(content) != "# Agent\n" {
		t.Errorf("undo left %q", content)
	}
}

func TestExecuteManifestFile(t *testing.T) {
	base := newRepo(t, "agents/shared/verifier/AGENTS.md")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "review.md"), []byte("\n## Review Rules (from reviewer)\n- be kind\n"), 0644); err != nil {
		t.Fatal(err)
	}
	manifestPath := filepath.Join(dir, "rules.yaml")
	data := "name: review rollout\nblocks:\n  review:\n    file: review.md\ntargets:\n  - path: agents/shared/verifier/AGENTS.md\n    rules: [review]\n"
	if err := os.WriteFile(manifestPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	app, out := newApp(t, &cli.Config{BaseDir: base, Manifest: manifestPath})
	if _, err := app.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := "[OK] shared/verifier: Added Review Rules\n\n=== review rollout complete: 1 rule blocks added ===\n"
	if out.String() != want {
		t.Errorf("report = %q, want %q", out.String(), want)
	}
}

func TestExecuteLint(t *testing.T) {
	t.Run("default manifest", func(t *testing.T) {
		app, _ := newApp(t, &cli.Config{Lint: true})
		summary, err := app.Execute()
		if err != nil {
			t.Fatalf("lint failed: %v", err)
		}
		if summary.Message == "" {
			t.Error("expected a message")
		}
	})

	t.Run("drifted marker", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		data := "blocks:\n  a:\n    marker: Old Title\n    text: '## New Title'\ntargets:\n  - path: x/AGENTS.md\n    rules: [a]\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		app, _ := newApp(t, &cli.Config{Lint: true, Manifest: path})
		if _, err := app.Execute(); !errors.Is(err, ruleinject.ErrLintIssues) {
			t.Errorf("expected ErrLintIssues, got %v", err)
		}
	})
}

func TestExecuteDryRun(t *testing.T) {
	base := newRepo(t, "workflows/security-audit/agents/scanner/AGENTS.md")
	app, out := newApp(t, &cli.Config{BaseDir: base, DryRun: true, Journal: filepath.Join(t.TempDir(), "j")})

	summary, err := app.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalAdded != 1 {
		t.Errorf("expected 1 planned block, got %d", summary.TotalAdded)
	}
	if !strings.Contains(out.String(), "[PLAN] security-audit/scanner: Would add Advanced API Security Audit") {
		t.Errorf("unexpected report:\n%s", out.String())
	}
	content, _ := os.ReadFile(filepath.Join(base, "workflows/security-audit/agents/scanner/AGENTS.md"))
	if string(content) != "# Agent\n" {
		t.Errorf("dry run modified the file: %q", content)
	}
}

func TestResolveBaseDir(t *testing.T) {
	m, err := ruleinject.DefaultMapping()
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv(ruleinject.EnvRepo, "")
	t.Setenv(ruleinject.EnvStateDir, "")
	if got := ruleinject.ResolveBaseDir("", m); got != "~/.openclaw/setfarm-repo" {
		t.Errorf("default = %q", got)
	}

	t.Setenv(ruleinject.EnvStateDir, "/var/openclaw")
	if got := ruleinject.ResolveBaseDir("", m); got != "/var/openclaw/setfarm-repo" {
		t.Errorf("state dir = %q", got)
	}

	m.BaseDir = "/from/manifest"
	if got := ruleinject.ResolveBaseDir("", m); got != "/from/manifest" {
		t.Errorf("manifest = %q", got)
	}

	t.Setenv(ruleinject.EnvRepo, "/from/env")
	if got := ruleinject.ResolveBaseDir("", m); got != "/from/env" {
		t.Errorf("env = %q", got)
	}

	if got := ruleinject.ResolveBaseDir("/from/flag", m); got != "/from/flag" {
		t.Errorf("flag = %q", got)
	}
}
