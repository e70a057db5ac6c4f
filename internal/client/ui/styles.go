package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - arcade tones on a dark background
var (
	primaryColor   = lipgloss.Color("#F5C95C") // Coin gold
	secondaryColor = lipgloss.Color("#6FA8DC") // Arena blue
	accentColor    = lipgloss.Color("#9AD1A5") // Soft green
	mutedColor     = lipgloss.Color("#8A8A8A") // Grey
	fgColor        = lipgloss.Color("#F0F0F0") // Near white
	errColor       = lipgloss.Color("#E07B7B") // Soft red
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(1, 2).
			Align(lipgloss.Center)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true).
			Align(lipgloss.Center)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accentColor).
			Padding(0, 1).
			Width(30)

	focusedInputBoxStyle = inputBoxStyle.Copy().
				BorderForeground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	highlightStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	instructionStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true).
				Margin(1, 0)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	arenaBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	chatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	coinStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	systemChatStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true)

	leaderboardStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(primaryColor).
				Padding(1, 3).
				Align(lipgloss.Center)
)

// lipglossColored renders text in a hex color assigned by the server.
func lipglossColored(hex, text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex)).
		Bold(true).
		Render(text)
}
