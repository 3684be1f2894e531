// Package style defines the terminal styles shared by all commands.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// Bold is used for headings and success markers.
	Bold = lipgloss.NewStyle().Bold(true)

	// Dim is used for secondary detail (IDs, timestamps, hints).
	Dim = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// Info highlights informational status.
	Info = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	// Warn highlights recoverable problems.
	Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Err highlights failures.
	Err = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Interactive reports whether stdout is attached to a terminal.
// Commands check this before offering the interactive picker.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
