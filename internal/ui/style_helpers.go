package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders segments on one background so ANSI resets between
// styled segments do not leave gaps.
type BgStyle struct {
	bg    lipgloss.Color
	space string
}

// NewBgStyle creates a background helper for bgColor.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render renders text with style on the background, spaces included.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return styled.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// Space returns one styled space.
func (b BgStyle) Space() string { return b.space }

// Sep renders a separator in the faint foreground on the background.
func (b BgStyle) Sep(sep string) string {
	return lipgloss.NewStyle().Background(b.bg).Render(sep)
}

// Spaces returns n styled spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

// Join joins parts with a styled separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads content to width with the background color.
func (b BgStyle) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}

// renderBox draws a bordered panel with title set into the top border.
func (m Model) renderBox(title, content string, width int, focused bool) string {
	border := m.theme.BorderMuted
	if focused {
		border = m.theme.BorderFocus
	}
	if width < 10 {
		width = 10
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(width - 2).
		Render(content)

	if title == "" {
		return box
	}
	label := " " + truncate(title, width-6) + " "
	styled := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true).Render(label)
	lines := strings.SplitN(box, "\n", 2)
	topStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(border))
	rb := lipgloss.RoundedBorder()
	fill := width - 3 - lipgloss.Width(label)
	if fill < 0 {
		fill = 0
	}
	top := topStyle.Render(rb.TopLeft+rb.Top) + styled + topStyle.Render(strings.Repeat(rb.Top, fill)+rb.TopRight)
	if len(lines) == 1 {
		return top
	}
	return top + "\n" + lines[1]
}
