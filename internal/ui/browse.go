package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// browseChrome is the number of modal rows around the picker list.
const browseChrome = 10

var useDirKey = key.NewBinding(key.WithKeys("."), key.WithHelp(".", "Use this directory"))

// openBrowser opens the directory picker at the typed path, or the home
// directory when the path is not a directory.
func (m Model) openBrowser() (tea.Model, tea.Cmd) {
	picker := filepicker.New()
	picker.DirAllowed = true
	picker.FileAllowed = false
	picker.ShowHidden = false
	picker.CurrentDirectory = browseStart(m.dirInput.Value())

	styles := m.theme.Styles()
	picker.Styles.Cursor = styles.AccentText
	picker.Styles.Directory = styles.InfoText
	picker.Styles.Selected = styles.AccentText.Bold(true)
	picker.Styles.EmptyDirectory = styles.FaintText.PaddingLeft(2).SetString("No subdirectories")

	m.picker = picker
	m.browsing = true
	m.log.Debug("browse opened", "dir", picker.CurrentDirectory)
	return m, tea.Batch(m.picker.Init(), m.sizePicker())
}

// browseStart picks the directory the picker opens in.
func browseStart(typed string) string {
	typed = strings.TrimSpace(typed)
	if typed != "" {
		if strings.HasPrefix(typed, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				typed = filepath.Join(home, strings.TrimPrefix(typed, "~"))
			}
		}
		if info, err := os.Stat(typed); err == nil && info.IsDir() {
			return typed
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// sizePicker fits the picker list inside the modal.
func (m *Model) sizePicker() tea.Cmd {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(tea.WindowSizeMsg{
		Width:  m.width,
		Height: maxInt(m.height-browseChrome, 5),
	})
	return cmd
}

// handleBrowseKey processes keys while the picker is open.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape, m.keys.Browse):
		m.browsing = false
		m.syncFocus()
		return m, nil
	case key.Matches(msg, useDirKey):
		return m.chooseDirectory(m.picker.CurrentDirectory)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m.chooseDirectory(path)
	}
	return m, cmd
}

// chooseDirectory fills the directory input and previews the corpus.
func (m Model) chooseDirectory(dir string) (tea.Model, tea.Cmd) {
	m.browsing = false
	m.dirInput.SetValue(dir)
	m.dirInput.CursorEnd()
	m.syncFocus()
	m.log.Debug("directory chosen", "dir", dir)
	return m, m.rescan(dir)
}

// renderBrowser renders the picker modal.
func (m Model) renderBrowser() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Choose corpus directory"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(truncateMiddle(m.picker.CurrentDirectory, maxInt(m.width-16, 20))))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n\n")

	hints := []string{
		"enter/l open",
		"h/backspace up",
		useDirKey.Help().Key + " " + strings.ToLower(useDirKey.Help().Desc),
		"esc cancel",
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Render(strings.Join(hints, " · ")))

	return m.renderModal(b.String(), maxInt(m.width-10, 40))
}
