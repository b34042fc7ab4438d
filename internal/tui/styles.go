package tui

import "github.com/charmbracelet/lipgloss"

// Clip statuses shown in the STATUS column.
const (
	StatusPending   = "pending"
	StatusRendering = "rendering"
	StatusRendered  = "rendered"
	StatusSkipped   = "skipped"
	StatusWarning   = "warning"
	StatusError     = "error"
)

var (
	// TitleStyle styles the table title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		StatusRendered:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusRendering: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusSkipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusWarning:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusError:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending:   lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func isTerminalStatus(status string) bool {
	switch status {
	case StatusRendered, StatusSkipped, StatusError:
		return true
	default:
		return false
	}
}
