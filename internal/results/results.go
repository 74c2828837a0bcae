// Package results turns ranked (name, score) rows from the search backend
// into display rows.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/vsmbar/internal/vsm"
)

// NoResults is the placeholder text shown for an empty result set.
const NoResults = "No results found"

// Row is a single rendered result line.
type Row struct {
	Name        string
	Percent     string
	Score       float64
	Placeholder bool
}

// RawScore returns the score at four decimal places.
func (r Row) RawScore() string {
	if r.Placeholder {
		return ""
	}
	return strconv.FormatFloat(r.Score, 'f', 4, 64)
}

// List is a rendered result set in backend order.
type List struct {
	Rows    []Row
	Query   string
	Elapsed time.Duration
	Dropped int
}

// Empty reports whether the list holds only the placeholder.
func (l List) Empty() bool {
	return len(l.Rows) == 1 && l.Rows[0].Placeholder
}

// Matches returns the number of real result rows.
func (l List) Matches() int {
	if l.Empty() {
		return 0
	}
	return len(l.Rows)
}

// Summary describes the result set for the results header.
func (l List) Summary() string {
	n := l.Matches()
	noun := "results"
	if n == 1 {
		noun = "result"
	}
	s := fmt.Sprintf("%d %s", n, noun)
	if l.Elapsed > 0 {
		s += fmt.Sprintf(" in %.2fms", float64(l.Elapsed)/float64(time.Millisecond))
	}
	return s
}

// Renderer converts raw result rows into a List. Malformed rows are logged
// and skipped.
type Renderer struct {
	log *log.Logger
}

// NewRenderer returns a Renderer logging data-format warnings to logger.
// A nil logger discards them.
func NewRenderer(logger *log.Logger) Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return Renderer{log: logger}
}

// Render maps rows to display rows. Order is preserved and duplicates are
// kept. An empty input yields exactly one placeholder row.
func (r Renderer) Render(rows []json.RawMessage) List {
	list := List{Rows: make([]Row, 0, len(rows))}
	for i, raw := range rows {
		row, err := parseRow(raw)
		if err != nil {
			list.Dropped++
			r.logger().Warn("skipping result row",
				"kind", vsm.MalformedPayload,
				"index", i,
				"row", string(raw),
				"error", err,
			)
			continue
		}
		list.Rows = append(list.Rows, row)
	}
	if len(rows) == 0 {
		list.Rows = append(list.Rows, Row{Name: NoResults, Placeholder: true})
	}
	return list
}

// RenderOutcome renders an OutcomeResults payload, keeping the echoed query
// and elapsed time.
func (r Renderer) RenderOutcome(out vsm.Outcome) List {
	list := r.Render(out.Results)
	list.Query = out.Query
	list.Elapsed = out.Elapsed
	return list
}

func (r Renderer) logger() *log.Logger {
	if r.log == nil {
		return log.New(io.Discard)
	}
	return r.log
}

// FormatPercent renders score as a percentage with one decimal place.
func FormatPercent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64) + "%"
}

func parseRow(raw json.RawMessage) (Row, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Row{}, fmt.Errorf("row is not an array: %w", err)
	}
	if len(fields) < 2 {
		return Row{}, fmt.Errorf("row has %d fields, want 2", len(fields))
	}
	var name string
	if err := json.Unmarshal(fields[0], &name); err != nil {
		return Row{}, fmt.Errorf("name: %w", err)
	}
	var score float64
	if err := json.Unmarshal(fields[1], &score); err != nil {
		return Row{}, fmt.Errorf("score: %w", err)
	}
	return Row{Name: name, Percent: FormatPercent(score), Score: score}, nil
}
