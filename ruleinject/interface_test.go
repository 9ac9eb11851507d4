package ruleinject_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sokinpui/ruleinject/ruleinject"
)

const inlineManifest = `
name: library test
blocks:
  a:
    marker: Marker A
    text: "\n## Marker A\ncontent A\n"
  b:
    marker: Marker B
    text: "\n## Marker B\ncontent B\n"
targets:
  - path: workflows/bug-fix/agents/fixer/AGENTS.md
    rules: [a, b]
  - path: workflows/bug-fix/agents/triager/AGENTS.md
    rules: [a]
`

func TestApply(t *testing.T) {
	base := t.TempDir()
	fixer := filepath.Join(base, "workflows/bug-fix/agents/fixer/AGENTS.md")
	if err := os.MkdirAll(filepath.Dir(fixer), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fixer, []byte("## Existing Section\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := ruleinject.ParseManifest([]byte(inlineManifest))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}

	var out bytes.Buffer
	summary, err := ruleinject.Apply(m, ruleinject.Config{BaseDir: base}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalAdded != 2 {
		t.Errorf("expected 2 blocks added, got %d", summary.TotalAdded)
	}

	want := "[OK] bug-fix/fixer: Added Marker A, Marker B\n" +
		"[SKIP] Not found: " + filepath.Join(base, "workflows/bug-fix/agents/triager/AGENTS.md") + "\n" +
		"\n=== library test complete: 2 rule blocks added ===\n"
	if out.String() != want {
		t.Errorf("report mismatch:\ngot:\n%s\nwant:\n%s", out.String(), want)
	}

	// A second run adds nothing.
	out.Reset()
	summary, err = ruleinject.Apply(m, ruleinject.Config{BaseDir: base}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalAdded != 0 {
		t.Errorf("second run added %d blocks", summary.TotalAdded)
	}
	if !strings.Contains(out.String(), "[SKIP] fixer: already has 'Marker A'") {
		t.Errorf("missing skip line in:\n%s", out.String())
	}
}

func TestDefaultMappingOnEmptyRepo(t *testing.T) {
	m, err := ruleinject.DefaultMapping()
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	summary, err := ruleinject.Apply(m, ruleinject.Config{BaseDir: t.TempDir(), DryRun: true}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalAdded != 0 {
		t.Errorf("expected nothing to add, got %d", summary.TotalAdded)
	}
	if n := strings.Count(out.String(), "[SKIP] Not found: "); n != len(m.Targets) {
		t.Errorf("expected %d missing targets, got %d", len(m.Targets), n)
	}
}
