package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Warm, photography-inspired palette
	primaryColor   = lipgloss.Color("#E8A87C") // warm orange
	secondaryColor = lipgloss.Color("#85DCB0") // mint green
	warningColor   = lipgloss.Color("#F6AE2D") // amber
	errorColor     = lipgloss.Color("#E85D75") // soft red
	mutedColor     = lipgloss.Color("#6B7280") // gray
	dimTextColor   = lipgloss.Color("#9CA3AF") // dim text

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	percentStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	confirmPromptStyle = lipgloss.NewStyle().
				Foreground(warningColor).
				Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	yesSelectedStyle = buttonStyle.
				BorderForeground(secondaryColor).
				Background(lipgloss.Color("#2D5A27"))

	noSelectedStyle = buttonStyle.
			BorderForeground(errorColor).
			Background(lipgloss.Color("#5A2727"))

	confirmYesStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	confirmNoStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	iconFolder = "📁"
	iconArrow  = "→"
)
