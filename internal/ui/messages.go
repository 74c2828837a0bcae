package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/vsmbar/internal/corpus"
	"github.com/five82/vsmbar/internal/history"
	"github.com/five82/vsmbar/internal/logtail"
)

// toggleMsg flips overlay visibility. It comes from the OS hotkey or the
// in-terminal binding.
type toggleMsg struct{}

// statsMsg carries a local corpus scan.
type statsMsg struct {
	root  string
	stats corpus.Stats
	err   error
}

// corpusChangedMsg reports a change under the watched corpus directory.
type corpusChangedMsg struct {
	root string
}

// historyMsg carries suggestions for one input.
type historyMsg struct {
	kind   history.Kind
	values []string
}

// logTailMsg carries the diagnostics log tail.
type logTailMsg struct {
	lines []string
	err   error
}

// noticeMsg sets the transient status line.
type noticeMsg struct {
	text string
}

// clearNoticeMsg clears the status line if it still shows notice id.
type clearNoticeMsg struct {
	id int
}

// waitForToggle blocks until the OS hotkey fires.
func waitForToggle(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return toggleMsg{}
	}
}

// waitForCorpusChange blocks until the watcher reports a change.
func waitForCorpusChange(w *corpus.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		root, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return corpusChangedMsg{root: root}
	}
}

// scanCorpus counts the documents in root.
func scanCorpus(ctx context.Context, root string) tea.Cmd {
	return func() tea.Msg {
		stats, err := corpus.Scan(ctx, root)
		return statsMsg{root: root, stats: stats, err: err}
	}
}

// loadHistory reads suggestions of kind.
func loadHistory(ctx context.Context, store *history.Store, kind history.Kind) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, HistoryTimeout)
		defer cancel()
		values, err := store.Values(ctx, kind, HistorySuggestions)
		if err != nil {
			return noticeMsg{text: "history unavailable: " + err.Error()}
		}
		return historyMsg{kind: kind, values: values}
	}
}

// recordHistory stores value and reloads the suggestions for kind.
func recordHistory(ctx context.Context, store *history.Store, kind history.Kind, value string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		wctx, cancel := context.WithTimeout(ctx, HistoryTimeout)
		defer cancel()
		if err := store.Record(wctx, kind, value); err != nil {
			return noticeMsg{text: "history unavailable: " + err.Error()}
		}
		return loadHistory(ctx, store, kind)()
	}
}

// readLogTail reads the end of the log file.
func readLogTail(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logTailMsg{lines: lines, err: err}
	}
}

// clearNoticeAfter clears notice id after d.
func clearNoticeAfter(d time.Duration, id int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearNoticeMsg{id: id} })
}
