package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Out receives all diagnostics. Stdout is reserved for the run report.
var Out io.Writer = os.Stderr

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

// DisableColor turns off colouring for every helper in this package.
func DisableColor() {
	color.NoColor = true
}

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(Out, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(Out, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(Out, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(Out, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Out, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(Out, "  "+format+"\n", a...)
}

// --- Summaries ---

func PrintUndoSummary(reverted, failed []string) {
	Header("\n--- Undo Summary ---")
	if len(reverted) == 0 && len(failed) == 0 {
		Info("No files were reverted.")
		return
	}
	if len(reverted) > 0 {
		Success("Successfully reverted %d file(s):", len(reverted))
		for _, f := range reverted {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
	if len(failed) > 0 {
		Error("Failed to revert %d file(s):", len(failed))
		for _, f := range failed {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
}
