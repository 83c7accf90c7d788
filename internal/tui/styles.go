package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorFg     = lipgloss.Color("#ABB2BF")
	colorMuted  = lipgloss.Color("#636B78")
	colorGreen  = lipgloss.Color("#98C379")
	colorYellow = lipgloss.Color("#E5C07B")
	colorRed    = lipgloss.Color("#E06C75")
	colorCyan   = lipgloss.Color("#56B6C2")
	colorBorder = lipgloss.Color("#3F4451")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true).
			PaddingLeft(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)

	countdownStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	countdownIdleStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true)

	originStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(1)

	historyCompletedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	historyStoppedStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)
