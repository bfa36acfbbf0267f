// Package termui renders assessments and field lists for the terminal.
package termui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#667EEA")
	ColorSuccess = lipgloss.Color("#28A745")
	ColorWarning = lipgloss.Color("#FFC107")
	ColorError   = lipgloss.Color("#DC3545")
	ColorMuted   = lipgloss.Color("#888888")
)

var Styles = struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style

	SuccessBox lipgloss.Style
	WarningBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
	Heading: lipgloss.NewStyle().Bold(true).Underline(true),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Error:   lipgloss.NewStyle().Foreground(ColorError),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}
