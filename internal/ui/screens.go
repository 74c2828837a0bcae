package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vsmbar/internal/results"
	"github.com/five82/vsmbar/internal/view"
	"github.com/five82/vsmbar/internal/vsm"
)

// resultsChrome is the number of rows around the results viewport: header,
// command bar, banner, query panel and the results box borders.
const resultsChrome = 13

// renderContent renders the panels of the active base screen.
func (m Model) renderContent() string {
	snap := m.ctrl.State()
	switch snap.Base {
	case view.ScreenCorpus:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderCorpusPanel(snap),
			m.renderInfoPanel(),
		)
	case view.ScreenQuery:
		panels := []string{m.renderQueryPanel(snap)}
		if snap.ShowResults() {
			panels = append(panels, m.renderResultsPanel(snap))
		}
		return lipgloss.JoinVertical(lipgloss.Left, panels...)
	default:
		return m.renderHandshake(snap)
	}
}

// renderHandshake shows the hosted greeting in flight or failed.
func (m Model) renderHandshake(snap view.Snapshot) string {
	styles := m.theme.Styles()
	var b strings.Builder
	if snap.HasError {
		b.WriteString(styles.DangerText.Render("The hosted backend did not answer."))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Press enter to try again or ctrl+b to use a local backend."))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(styles.Text.Render("Connecting to the hosted backend..."))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("A sleeping instance can take a minute to wake up."))
	}
	return m.renderBox("Hosted backend", b.String(), m.panelWidth(), false)
}

// renderCorpusPanel renders the directory input, build status and the
// local corpus preview.
func (m Model) renderCorpusPanel(snap view.Snapshot) string {
	styles := m.theme.Styles()
	width := m.panelWidth()

	var b strings.Builder
	b.WriteString(styles.MutedText.Render("Corpus directory"))
	b.WriteString("\n")
	b.WriteString(m.dirInput.View())
	b.WriteString("\n")

	switch {
	case snap.State == view.Loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(styles.WarningText.Render("Building index for " + truncateMiddle(snap.Directory, width-24) + "..."))
	case m.ctrl.BrowseAllowed():
		b.WriteString(styles.FaintText.Render("ctrl+o to browse, tab to complete from recent directories"))
	default:
		b.WriteString(styles.FaintText.Render("The path is read by the hosted server, not this machine"))
	}

	if line := m.statsLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}

	return m.renderBox("Select corpus", b.String(), width, snap.State == view.CorpusEntry)
}

// statsLine renders the local corpus preview.
func (m Model) statsLine() string {
	if m.ctrl.Backend() != vsm.Local || m.statsRoot == "" {
		return ""
	}
	styles := m.theme.Styles()
	switch {
	case m.statsErr != "":
		return styles.WarningText.Render(m.statsErr)
	case m.stats == nil:
		return styles.FaintText.Render("Scanning " + truncateMiddle(m.statsRoot, 40) + "...")
	case m.stats.Documents == 0:
		return styles.WarningText.Render("No .txt, .pdf or .docx files in this directory")
	default:
		return styles.InfoText.Render(m.stats.Summary())
	}
}

// renderInfoPanel renders the "How to use" panel.
func (m Model) renderInfoPanel() string {
	styles := m.theme.Styles()
	steps := []string{
		"Enter the path of a directory holding .txt, .pdf or .docx files.",
		"Press enter to build the index. Only top-level files are read.",
		"Type a query and press enter. Results are ranked by cosine similarity.",
		"Press esc to start over with another corpus.",
	}
	var b strings.Builder
	for i, step := range steps {
		b.WriteString(styles.AccentText.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(step))
		if i < len(steps)-1 {
			b.WriteString("\n")
		}
	}
	return m.renderBox("How to use", b.String(), m.panelWidth(), false)
}

// renderQueryPanel renders the build status line and the query input.
func (m Model) renderQueryPanel(snap view.Snapshot) string {
	styles := m.theme.Styles()
	width := m.panelWidth()

	var b strings.Builder
	if snap.IndexNote != "" {
		b.WriteString(styles.SuccessText.Render("✓ "))
		b.WriteString(styles.Text.Render(truncate(snap.IndexNote, width-8)))
		b.WriteString("\n")
	}
	if m.stale {
		b.WriteString(styles.WarningText.Render("The corpus changed on disk. Press esc and rebuild to search the new files."))
		b.WriteString("\n")
	}
	if line := m.statsLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.queryInput.View())

	if snap.State == view.QueryLoading {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(styles.WarningText.Render("Searching..."))
	}

	return m.renderBox("Search", b.String(), width, true)
}

// renderResultsPanel renders the results viewport under a summary title.
func (m Model) renderResultsPanel(snap view.Snapshot) string {
	list := snap.Results
	title := "Results"
	if !list.Empty() {
		title = fmt.Sprintf("Results: %s", list.Summary())
		if list.Query != "" {
			title = fmt.Sprintf("Results for %q: %s", truncate(list.Query, 30), list.Summary())
		}
	}
	content := m.results.View()
	if m.results.TotalLineCount() > m.results.Height {
		content += "\n" + m.theme.Styles().FaintText.Render(fmt.Sprintf("%d%%", int(m.results.ScrollPercent()*100)))
	}
	return m.renderBox(title, content, m.panelWidth(), false)
}

// setResults loads the results list into the viewport.
func (m *Model) setResults(snap view.Snapshot) {
	m.results.SetContent(m.formatResults(snap.Results, m.results.Width))
	m.results.GotoTop()
}

// formatResults renders one line per row: rank, name, percent and raw score.
func (m Model) formatResults(list results.List, width int) string {
	styles := m.theme.Styles()
	if list.Empty() || len(list.Rows) == 0 {
		return styles.MutedText.Italic(true).Render(results.NoResults)
	}

	compact := width < LayoutCompactWidth-10
	rankWidth := len(fmt.Sprintf("%d.", len(list.Rows)))
	scoreWidth := 7 // "100.0%"
	rawWidth := 0
	if !compact {
		rawWidth = 8 // "(0.8730)"
	}
	nameWidth := width - rankWidth - scoreWidth - rawWidth - 4
	if nameWidth < 8 {
		nameWidth = 8
	}

	lines := make([]string, 0, len(list.Rows))
	for i, row := range list.Rows {
		rank := styles.FaintText.Render(padRight(fmt.Sprintf("%d.", i+1), rankWidth))
		name := styles.Text.Render(padRight(truncateMiddle(row.Name, nameWidth), nameWidth))
		pct := styles.AccentText.Bold(true).Render(fmt.Sprintf("%*s", scoreWidth, row.Percent))
		line := rank + " " + name + " " + pct
		if !compact {
			line += " " + styles.FaintText.Render("("+row.RawScore()+")")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
