package style

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Status types for checks and tracked files
type Status string

const (
	StatusPass     Status = "pass"
	StatusFail     Status = "fail"
	StatusWarn     Status = "warn"
	StatusModified Status = "modified"
	StatusUnknown  Status = "unknown"
	StatusKept     Status = "kept"
	StatusRemoved  Status = "removed"
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableColor()
	}
}

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusPass, StatusRemoved:
		return pterm.NewStyle(pterm.FgGreen)
	case StatusFail:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case StatusWarn, StatusModified:
		return pterm.NewStyle(pterm.FgYellow)
	case StatusKept:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Glyph returns the single-character marker for a status
func Glyph(status Status) string {
	switch status {
	case StatusPass, StatusRemoved:
		return "✓"
	case StatusFail:
		return "✗"
	case StatusWarn, StatusModified:
		return "!"
	case StatusKept:
		return "→"
	default:
		return "?"
	}
}

// Mark renders the colored glyph for a status
func Mark(status Status) string {
	return StatusStyle(status).Sprint(Glyph(status))
}

// Error renders a single-line fatal diagnostic
func Error(msg string) string {
	return pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("error: ") + msg
}
