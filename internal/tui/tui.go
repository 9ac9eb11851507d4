package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/ruleinject/model"
	"github.com/sokinpui/ruleinject/ruleinject"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type summaryMsg struct {
	model.Summary
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app     *ruleinject.App
	spinner spinner.Model
	state   state
	summary summaryMsg
	err     error
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

// New creates the model. The app's line report is discarded; the summary
// view replaces it.
func New(app *ruleinject.App) Model {
	app.SetOutput(io.Discard, false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		app:     app,
		spinner: s,
		state:   stateProcessing,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		return fmt.Sprintf("%s Injecting rules...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

// Err returns the error the run ended with, if any.
func (m Model) Err() error {
	return m.err
}

// Failed reports whether the run ended with an error or left files that
// could not be reverted.
func (m Model) Failed() bool {
	return m.err != nil || len(m.summary.Failed) > 0
}

func (m *Model) renderSummary() string {
	return RenderSummary(m.summary.Summary)
}

// RenderSummary formats a run or undo summary for the terminal.
func RenderSummary(s model.Summary) string {
	var b strings.Builder

	if s.Message != "" {
		b.WriteString(headerStyle.Render(s.Message))
		b.WriteString("\n\n")
	}

	var added, present, missing []string
	for _, r := range s.Results {
		label := r.Group + "/" + r.Name
		switch {
		case r.Missing:
			missing = append(missing, r.Path)
		case len(r.Added) > 0:
			added = append(added, fmt.Sprintf("%s: %s", label, strings.Join(r.Added, ", ")))
		}
		for _, marker := range r.Skipped {
			present = append(present, fmt.Sprintf("%s: %s", r.Name, marker))
		}
	}

	addedTitle := "Added:"
	if s.DryRun {
		addedTitle = "Would add:"
	}
	writeSection(&b, successStyle, addedTitle, added)
	writeSection(&b, faintStyle, "Already present:", present)
	writeSection(&b, errorStyle, "Not found:", missing)
	writeSection(&b, successStyle, "Reverted:", s.Reverted)
	writeSection(&b, errorStyle, "Failed:", s.Failed)

	if len(s.Results) > 0 {
		verb := "added"
		if s.DryRun {
			verb = "would be added"
		}
		b.WriteString(headerStyle.Render(fmt.Sprintf("%d rule blocks %s", s.TotalAdded, verb)))
		b.WriteString("\n")
	} else if s.Message == "" && len(s.Reverted) == 0 && len(s.Failed) == 0 {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}

	return b.String()
}

func writeSection(b *strings.Builder, style lipgloss.Style, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(style.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(item)))
	}
}

func (m *Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	if err != nil {
		// Check for detailed error to print stack
		if e, ok := err.(*ruleinject.DetailedError); ok {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}
	return summaryMsg{
		Summary: summary,
	}
}
