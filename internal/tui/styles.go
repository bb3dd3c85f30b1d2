package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))

	scoreMineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105"))
	scoreTheirs    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("204"))
	timerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	timerLowStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	correctStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	incorrectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	roomCodeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105")).
			Border(lipgloss.RoundedBorder()).Padding(0, 2)

	optionStyle = lipgloss.NewStyle().Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).Padding(1, 2)
)
