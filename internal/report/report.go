// Package report writes the line-oriented run report to stdout.
//
// The line shapes are stable and meant to be read by people and grepped by
// scripts:
//
//	[SKIP] Not found: <path>
//	[SKIP] <target>: already has '<marker>'
//	[OK] <group>/<target>: Added <marker>, <marker>
//
//	=== <name> complete: <n> rule blocks added ===
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")) // Grey
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))  // Green
	planStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))  // Mauve
)

var completeStyle = lipgloss.NewStyle().Bold(true)

// Writer formats injector events as report lines.
type Writer struct {
	out    io.Writer
	styled bool
	dryRun bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithStyle enables lipgloss colouring of the line tags.
func WithStyle(enabled bool) Option {
	return func(w *Writer) { w.styled = enabled }
}

// WithDryRun switches the added and tally lines to their planning form.
func WithDryRun(enabled bool) Option {
	return func(w *Writer) { w.dryRun = enabled }
}

// New creates a Writer that prints to out.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{out: out}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) tag(style lipgloss.Style, tag string) string {
	if !w.styled {
		return tag
	}
	return style.Render(tag)
}

// MissingTarget reports a target file that does not exist.
func (w *Writer) MissingTarget(path string) {
	fmt.Fprintf(w.out, "%s Not found: %s\n", w.tag(skipStyle, "[SKIP]"), path)
}

// AlreadyPresent reports a rule whose marker is already in the target.
func (w *Writer) AlreadyPresent(target, marker string) {
	fmt.Fprintf(w.out, "%s %s: already has '%s'\n", w.tag(skipStyle, "[SKIP]"), target, marker)
}

// Added reports every marker appended to one target.
func (w *Writer) Added(group, target string, markers []string) {
	if len(markers) == 0 {
		return
	}
	if w.dryRun {
		fmt.Fprintf(w.out, "%s %s/%s: Would add %s\n", w.tag(planStyle, "[PLAN]"), group, target, strings.Join(markers, ", "))
		return
	}
	fmt.Fprintf(w.out, "%s %s/%s: Added %s\n", w.tag(okStyle, "[OK]"), group, target, strings.Join(markers, ", "))
}

// Complete prints the final tally.
func (w *Writer) Complete(name string, total int) {
	var line string
	if w.dryRun {
		line = fmt.Sprintf("=== %s dry run: %d rule blocks would be added ===", name, total)
	} else {
		line = fmt.Sprintf("=== %s complete: %d rule blocks added ===", name, total)
	}
	if w.styled {
		line = completeStyle.Render(line)
	}
	fmt.Fprintf(w.out, "\n%s\n", line)
}
