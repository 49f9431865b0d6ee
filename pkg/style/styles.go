package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

// Header renders a section heading.
func Header(s string) string {
	return headerStyle.Render(s)
}

// Dim renders secondary detail (paths, timestamps).
func Dim(s string) string {
	return dimStyle.Render(s)
}

// Bold renders an emphasized fragment.
func Bold(s string) string {
	return boldStyle.Render(s)
}

// SummaryLine renders a "label: n" counter pair.
func SummaryLine(label string, n int) string {
	return fmt.Sprintf("%s %s", boldStyle.Render(fmt.Sprintf("%d", n)), label)
}
