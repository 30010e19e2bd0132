package plugs

import "github.com/charmbracelet/lipgloss"

// styles holds the terminal styles of the command output.
type styles struct {
	noColor bool
	name    lipgloss.Style
	faint   lipgloss.Style
	success lipgloss.Style
	title   lipgloss.Style
}

func newStyles(noColor bool) styles {
	return styles{
		noColor: noColor,
		name:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		faint:   lipgloss.NewStyle().Faint(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		title:   lipgloss.NewStyle().Bold(true).Underline(true),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if s.noColor {
		return text
	}
	return style.Render(text)
}

// ErrorStyle renders errors printed by main.
var ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
