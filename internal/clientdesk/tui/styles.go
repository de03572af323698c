package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("39")  // Blue
	mutedColor   = lipgloss.Color("241") // Gray
	successColor = lipgloss.Color("76")  // Green
	warningColor = lipgloss.Color("214") // Orange
	errorColor   = lipgloss.Color("196") // Red

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	statusStyle   = lipgloss.NewStyle().Foreground(successColor)
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(warningColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)

	appStyle = lipgloss.NewStyle().Padding(1, 2)
)
