package ui

import "charm.land/lipgloss/v2"

// Styles for the console menus. Cached to avoid recomputing on every print.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	menuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)
