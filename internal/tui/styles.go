package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorMuted   = lipgloss.Color("#565f89")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	bannerStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	progressStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// priorityStyle colors a priority label.
func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "urgent":
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case "high":
		return lipgloss.NewStyle().Foreground(colorWarning)
	case "low":
		return mutedStyle
	}
	return lipgloss.NewStyle()
}
