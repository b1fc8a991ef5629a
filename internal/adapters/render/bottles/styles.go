package bottles

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	bottle     lipgloss.Style
	own        lipgloss.Style
	detail     lipgloss.Style
	message    lipgloss.Style
	amount     lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		bottle:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		own:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		message:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250")),
		amount:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
