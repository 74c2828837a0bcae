package ui

import "github.com/charmbracelet/lipgloss"

// renderModal centers content in a rounded modal over the whole screen.
func (m Model) renderModal(content string, width int) string {
	if m.width > 0 && width > m.width-4 {
		width = maxInt(m.width-4, 20)
	}
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width).
		Render(content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
