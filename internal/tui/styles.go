package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/portscope/portscope/internal/port"
)

// Color palette.
var (
	colorGreen = lipgloss.Color("2")
	colorRed   = lipgloss.Color("1")
	colorGray  = lipgloss.Color("8")
	colorWhite = lipgloss.Color("15")
	colorCyan  = lipgloss.Color("6")
)

// Layout styles.
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorCyan)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingTop(1)

	// Row styles.
	knownDirStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	unknownDirStyle = lipgloss.NewStyle().Foreground(colorWhite)
	systemStyle     = lipgloss.NewStyle().Foreground(colorGray)

	// Kill confirmation styles.
	dangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")).
			Background(lipgloss.Color("52")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	// Detail view styles.
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorWhite)
)

// rowStyle picks a style for an entry row: system daemons (children of
// PID 1 with no known directory) are dimmed, entries with a resolved
// working directory highlighted.
func rowStyle(directory string, parentPID int) lipgloss.Style {
	if directory != port.UnknownDirectory {
		return knownDirStyle
	}
	if parentPID == 1 {
		return systemStyle
	}
	return unknownDirStyle
}
