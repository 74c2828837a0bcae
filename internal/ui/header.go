package ui

import (
	"strings"

	"github.com/five82/vsmbar/internal/view"
	"github.com/five82/vsmbar/internal/vsm"
)

// renderHeader renders the status bar: logo, backend badge, state and the
// hotkey hint.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	snap := m.ctrl.State()
	backend := m.ctrl.Backend()

	parts := []string{
		bg.Render("vsmbar", styles.Logo),
		m.theme.Styles().BadgeStyle(string(backend)).Render(strings.ToUpper(string(backend))),
		m.renderStateLabel(snap, styles, bg),
	}

	if snap.Indexed != "" && m.width >= LayoutCompactWidth {
		label := bg.Render("Corpus:", styles.MutedText) + bg.Space() +
			bg.Render(truncateMiddle(snap.Indexed, 40), styles.Text)
		if m.stale {
			label += bg.Space() + bg.Render("(changed)", styles.WarningText)
		}
		parts = append(parts, label)
	}

	hint := m.keys.Hotkey.Help().Key
	if m.activations == nil {
		hint += " (terminal only)"
	}
	parts = append(parts, bg.Render(hint, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderStateLabel describes the session state in a few words.
func (m Model) renderStateLabel(snap view.Snapshot, styles Styles, bg BgStyle) string {
	switch snap.State {
	case view.Handshake:
		if snap.HasError {
			return bg.Render("● Unreachable", styles.DangerText)
		}
		return bg.Render("● Connecting...", styles.WarningText.Bold(true))
	case view.Loading:
		return bg.Render("● Indexing", styles.WarningText.Bold(true))
	case view.QueryLoading:
		return bg.Render("● Searching", styles.WarningText.Bold(true))
	case view.QueryEntry, view.Results:
		return bg.Render("● Ready", styles.SuccessText)
	default:
		if m.ctrl.Backend() == vsm.Hosted {
			return bg.Render("● Connected", styles.SuccessText)
		}
		return bg.Render("● Local", styles.InfoText)
	}
}

// renderCommandBar renders the context-dependent key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	snap := m.ctrl.State()
	switch snap.State {
	case view.Handshake:
		commands = []cmd{
			{"enter", "Retry"},
			{"ctrl+b", "Local"},
		}
	case view.CorpusEntry, view.Loading:
		commands = []cmd{
			{"enter", "Build index"},
			{"tab", "Complete"},
		}
		if m.ctrl.BrowseAllowed() {
			commands = append(commands, cmd{"ctrl+o", "Browse"})
		}
		commands = append(commands, cmd{"ctrl+b", "Backend"})
	case view.Results:
		commands = []cmd{
			{"enter", "Search"},
			{"up/down", "Scroll"},
			{"esc", "New corpus"},
			{"ctrl+b", "Backend"},
		}
	default:
		commands = []cmd{
			{"enter", "Search"},
			{"tab", "Complete"},
			{"esc", "New corpus"},
			{"ctrl+b", "Backend"},
		}
	}
	if snap.HasError {
		commands = append(commands, cmd{"ctrl+x", "Dismiss"})
	}
	commands = append(commands, cmd{"ctrl+l", "Logs"}, cmd{"f1", "More"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)
	compact := m.width > 0 && m.width < LayoutCompactWidth

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		if compact {
			segments = append(segments, bg.Render(c.key, styles.AccentText))
			continue
		}
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("ctrl+t", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderBanner renders the error overlay as a one-line banner.
func (m Model) renderBanner() string {
	snap := m.ctrl.State()
	if !snap.HasError {
		return ""
	}
	styles := m.theme.Styles()
	width := m.panelWidth()
	text := "Error: " + snap.Error
	if snap.State == view.Handshake {
		text += "  (enter to retry)"
	}
	return styles.Banner.Width(width).Render(truncate(text, width-2))
}
