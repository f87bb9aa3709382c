package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	HelpStyle   = lipgloss.NewStyle().Faint(true)

	// Message styles for one-line CLI output.
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	// Picker styles.
	CursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	statusStyles = map[string]lipgloss.Style{
		StatusFetched: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusCached:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		StatusFetching: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		StatusStale: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		StatusFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
