package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF4672")
	amber  = lipgloss.Color("#F5A623")
	gray   = lipgloss.Color("#888888")
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	// Section headers in reports
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	// Tags and other highlighted values
	TagStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(gray).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(amber)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	DescStyle = lipgloss.NewStyle().
			Foreground(gray).
			Italic(true)
)
