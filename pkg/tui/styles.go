package tui

import "github.com/charmbracelet/lipgloss"

const (
	defaultBarColor = "#c678dd"
	overlapColor    = "#e5534b"
	mutedColor      = "#5c6370"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(mutedColor))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	overlapStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(overlapColor)).Bold(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(overlapColor))
)

func barStyle(color string) lipgloss.Style {
	if color == "" {
		color = defaultBarColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func castStyle(color string) lipgloss.Style {
	return barStyle(color).Faint(true)
}

func barLabelStyle(color string) lipgloss.Style {
	if color == "" {
		color = defaultBarColor
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(color)).Foreground(lipgloss.Color("#1e1e1e"))
}
