package session

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

// FormatSummary renders a finished session's terminal status for a human
// operator, colorized when w is a terminal. This is strictly separate from
// logIteration's required plain diagnostic line: FormatSummary is a
// one-shot end-of-session report, not part of the adjusting-stage trail.
func FormatSummary(w io.Writer, output model.SessionOutput) {
	noColor := !isTerminal(w)

	statusColor := color.New(color.FgGreen, color.Bold)
	switch output.Status {
	case model.SessionDeadlineExceeded:
		statusColor = color.New(color.FgYellow, color.Bold)
	case model.SessionError:
		statusColor = color.New(color.FgRed, color.Bold)
	}
	if noColor {
		statusColor.DisableColor()
	}

	fmt.Fprintf(w, "session %s\n", statusColor.Sprint(output.Status))
	fmt.Fprintf(w, "  converged rps: %d\n", output.ConvergedRPS)
	fmt.Fprintf(w, "  adjusting iterations: %d\n", len(output.AdjustingStageResults))
	if output.Message != "" {
		fmt.Fprintf(w, "  message: %s\n", output.Message)
	}
}

// isTerminal reports whether w is an interactive terminal, so colorized
// output can be gated on it.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
