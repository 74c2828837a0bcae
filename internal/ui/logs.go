package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/vsmbar/internal/logtail"
)

var (
	logRefreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh"))
	logTopKey     = key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "Top"))
	logBottomKey  = key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "Bottom"))
)

// renderLogs renders the diagnostics overlay: the tail of today's log.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	title := "Diagnostics"
	var content string
	switch {
	case m.logPath == "":
		content = styles.MutedText.Render("Logging to a file is disabled.")
	case m.logErr != "":
		content = styles.DangerText.Render(m.logErr)
	case len(m.logRaw) == 0:
		content = styles.MutedText.Render("No log lines yet.")
	default:
		content = m.logView.View()
	}
	box := m.renderBox(title, content, m.width, true)

	bar := m.theme.Styles().WithBackground(m.theme.Surface)
	colon := bg.Sep(":")
	parts := []string{
		bg.Render(truncateMiddle(m.logPath, maxInt(m.width/2, 20)), bar.FaintText),
		bg.Render(fmt.Sprintf("%d lines", len(m.logRaw)), bar.MutedText),
	}
	for _, b := range []key.Binding{logRefreshKey, logTopKey, logBottomKey} {
		parts = append(parts, bg.Render(b.Help().Key, bar.AccentText)+colon+bg.Render(b.Help().Desc, bar.MutedText))
	}
	parts = append(parts, bg.Render("esc", bar.AccentText)+colon+bg.Render("Close", bar.MutedText))
	status := bg.FillLine(bg.Join(parts, "  "), m.width)
	return box + "\n" + status
}

// handleLogsKey processes keys while the diagnostics overlay is open.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape, m.keys.Diagnostics):
		m.showLogs = false
		return m, nil
	case key.Matches(msg, logRefreshKey):
		return m, readLogTail(m.logPath)
	case key.Matches(msg, logTopKey):
		m.logView.GotoTop()
		return m, nil
	case key.Matches(msg, logBottomKey):
		m.logView.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// handleLogTail loads log lines into the diagnostics viewport.
func (m *Model) handleLogTail(msg logTailMsg) {
	if msg.err != nil {
		m.logErr = "read log: " + msg.err.Error()
		return
	}
	m.logErr = ""
	m.logRaw = msg.lines
	m.logView.SetContent(strings.Join(logtail.ColorizeLines(msg.lines, m.theme.LogStyles()), "\n"))
	m.logView.GotoBottom()
}
