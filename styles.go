package main

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// Command styles
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // Blue
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))  // Green
	bulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Gray

	// Calendar cells
	cellStyle     = lipgloss.NewStyle().Width(4).Align(lipgloss.Center)
	weekdayStyle  = cellStyle.Foreground(lipgloss.Color("240"))
	todayStyle    = cellStyle.Bold(true).Underline(true)
	markedStyle   = cellStyle.Foreground(lipgloss.Color("82")).Bold(true)
	selectedStyle = cellStyle.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("39")).Bold(true)
	cursorStyle   = cellStyle.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	monthStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Width(28).Align(lipgloss.Center)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = panelStyle.BorderForeground(lipgloss.Color("57"))

	pickerFieldStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252"))
	pickerActiveFieldStyle = pickerFieldStyle.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
)

// Status colours.
const (
	colorInfo  = "86"
	colorOK    = "82"
	colorWarn  = "226"
	colorError = "196"
)
