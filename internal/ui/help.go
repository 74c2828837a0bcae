package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{title: "Search", bindings: [][]string{
			{m.keys.Submit.Help().Key, "Build index / run query"},
			{m.keys.Escape.Help().Key, "Start over with a new corpus"},
			{m.keys.Browse.Help().Key, "Browse for a directory (local)"},
		}},
		{title: "Results", bindings: [][]string{
			{"up/down", "Scroll results"},
			{"pgup/pgdn", "Page results"},
		}},
		{title: "General", bindings: [][]string{
			{m.keys.ToggleBackend.Help().Key, "Switch local/hosted backend"},
			{m.keys.Dismiss.Help().Key, "Dismiss error"},
			{m.keys.Diagnostics.Help().Key, "Diagnostics log"},
			{m.keys.Hotkey.Help().Key, "Show/hide overlay"},
			{m.keys.CycleTheme.Help().Key, "Cycle theme"},
			{m.keys.Help.Help().Key, "Toggle help"},
			{m.keys.Quit.Help().Key, "Quit"},
		}},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 36)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.bindings {
			b.WriteString(keyStyle.Render(item[0]))
			b.WriteString(styles.Text.Render(item[1]))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return m.renderModal(b.String(), 46)
}

type helpSection struct {
	title    string
	bindings [][]string
}
