package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#4338ca", Dark: "#818cf8"}
	colorMuted     = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	colorError     = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	colorCard      = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34d399"}

	titleStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	branchStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	cardStyle     = lipgloss.NewStyle().Foreground(colorCard)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)
