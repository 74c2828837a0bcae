package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the command bar
	// drops descriptions and the results table drops the raw score.
	LayoutCompactWidth = 80

	// LayoutMaxPanelWidth caps panel width on wide terminals.
	LayoutMaxPanelWidth = 110
)

// Diagnostics limits.
const (
	// LogTailLines is the number of log lines the diagnostics overlay reads.
	LogTailLines = 500
)

// Timing constants.
const (
	// HistoryTimeout bounds each history read or write.
	HistoryTimeout = 2 * time.Second

	// NoticeDuration is how long a status line notice stays visible.
	NoticeDuration = 4 * time.Second

	// HistorySuggestions is the number of suggestions offered per input.
	HistorySuggestions = 20
)
