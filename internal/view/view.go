package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/vsmbar/internal/results"
)

// State is the position in the corpus → query → results flow.
type State int

const (
	// Handshake waits for the hosted backend's greeting. Nothing but the
	// backend selector and the error banner is revealed.
	Handshake State = iota
	CorpusEntry
	Loading
	QueryEntry
	QueryLoading
	Results
)

func (s State) String() string {
	switch s {
	case Handshake:
		return "handshake"
	case CorpusEntry:
		return "corpus_entry"
	case Loading:
		return "loading"
	case QueryEntry:
		return "query_entry"
	case QueryLoading:
		return "query_loading"
	case Results:
		return "results"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Screen is the base screen a State projects onto.
type Screen int

const (
	ScreenNone Screen = iota
	ScreenCorpus
	ScreenQuery
)

var (
	ErrEmptySubmission   = errors.New("empty submission")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Machine owns the flow state and the error overlay. It performs no I/O.
type Machine struct {
	state      State
	errMsg     string
	hasErr     bool
	directory  string
	query      string
	indexed    string
	indexNote  string
	results    results.List
	hasResults bool
}

// New returns a Machine in CorpusEntry, or in Handshake when a greeting must
// arrive first.
func New(handshake bool) *Machine {
	m := &Machine{}
	m.Reset(handshake)
	return m
}

// Reset clears the whole session.
func (m *Machine) Reset(handshake bool) {
	*m = Machine{state: CorpusEntry}
	if handshake {
		m.state = Handshake
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Base returns the base screen for the current state.
func (m *Machine) Base() Screen {
	return baseOf(m.state)
}

func baseOf(s State) Screen {
	switch s {
	case CorpusEntry, Loading:
		return ScreenCorpus
	case QueryEntry, QueryLoading, Results:
		return ScreenQuery
	default:
		return ScreenNone
	}
}

// Busy reports whether a request is outstanding for the current state.
func (m *Machine) Busy() bool {
	return m.state == Loading || m.state == QueryLoading
}

// Greeted reveals CorpusEntry after a successful handshake.
func (m *Machine) Greeted() error {
	if m.state != Handshake {
		return m.invalid("greeted")
	}
	m.state = CorpusEntry
	m.clearError()
	return nil
}

// BeginBuild records dir and enters Loading. Whitespace-only input is
// rejected and leaves the machine unchanged.
func (m *Machine) BeginBuild(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrEmptySubmission
	}
	if m.state != CorpusEntry && m.state != Loading {
		return m.invalid("build")
	}
	m.directory = dir
	m.state = Loading
	return nil
}

// IndexBuilt moves Loading to QueryEntry and clears the overlay.
func (m *Machine) IndexBuilt(message string) error {
	if m.state != Loading {
		return m.invalid("index built")
	}
	m.indexed = m.directory
	m.indexNote = message
	m.state = QueryEntry
	m.clearError()
	return nil
}

// BeginQuery records q and enters QueryLoading. Whitespace-only input is
// rejected and leaves the machine unchanged.
func (m *Machine) BeginQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return ErrEmptySubmission
	}
	switch m.state {
	case QueryEntry, QueryLoading, Results:
	default:
		return m.invalid("query")
	}
	m.query = q
	m.results = results.List{}
	m.hasResults = false
	m.state = QueryLoading
	return nil
}

// ShowResults attaches list and enters Results.
func (m *Machine) ShowResults(list results.List) error {
	if m.state != QueryLoading {
		return m.invalid("results")
	}
	m.results = list
	m.hasResults = true
	m.state = Results
	m.clearError()
	return nil
}

// Fail raises the error overlay and drops back to the base screen's entry
// state. Handshake stays in Handshake.
func (m *Machine) Fail(message string) {
	switch m.state {
	case Loading:
		m.state = CorpusEntry
	case QueryLoading:
		m.state = QueryEntry
	}
	m.errMsg = message
	m.hasErr = true
}

// Escape resets Results and QueryEntry (and any pending load) back to an
// empty CorpusEntry. It reports whether anything changed. In CorpusEntry it
// only dismisses the overlay.
func (m *Machine) Escape() bool {
	switch m.state {
	case QueryEntry, QueryLoading, Results, Loading:
		m.Reset(false)
		return true
	case CorpusEntry:
		if m.hasErr {
			m.clearError()
			return true
		}
	}
	return false
}

// Dismiss clears the error overlay.
func (m *Machine) Dismiss() { m.clearError() }

// Error returns the overlay message, if raised.
func (m *Machine) Error() (string, bool) { return m.errMsg, m.hasErr }

// Directory returns the last submitted corpus directory.
func (m *Machine) Directory() string { return m.directory }

// Indexed returns the directory of the successful build, if any.
func (m *Machine) Indexed() string { return m.indexed }

// IndexNote returns the backend's index-built message.
func (m *Machine) IndexNote() string { return m.indexNote }

// Query returns the last submitted query.
func (m *Machine) Query() string { return m.query }

// Results returns the attached result list.
func (m *Machine) Results() (results.List, bool) { return m.results, m.hasResults }

// Snapshot returns a read-only copy for rendering.
func (m *Machine) Snapshot() Snapshot {
	rows := make([]results.Row, len(m.results.Rows))
	copy(rows, m.results.Rows)
	list := m.results
	list.Rows = rows
	return Snapshot{
		State:      m.state,
		Base:       m.Base(),
		Error:      m.errMsg,
		HasError:   m.hasErr,
		Directory:  m.directory,
		Indexed:    m.indexed,
		IndexNote:  m.indexNote,
		Query:      m.query,
		Results:    list,
		HasResults: m.hasResults,
	}
}

func (m *Machine) clearError() {
	m.errMsg = ""
	m.hasErr = false
}

func (m *Machine) invalid(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, m.state)
}

// Snapshot is the value the UI projects onto widgets.
type Snapshot struct {
	State      State
	Base       Screen
	Error      string
	HasError   bool
	Directory  string
	Indexed    string
	IndexNote  string
	Query      string
	Results    results.List
	HasResults bool
}

// Busy reports whether a request is outstanding.
func (s Snapshot) Busy() bool {
	return s.State == Loading || s.State == QueryLoading
}

// ShowCorpus reports whether the corpus panel is visible.
func (s Snapshot) ShowCorpus() bool { return s.Base == ScreenCorpus }

// ShowQuery reports whether the query panel is visible.
func (s Snapshot) ShowQuery() bool { return s.Base == ScreenQuery }

// ShowResults reports whether the results list is visible.
func (s Snapshot) ShowResults() bool { return s.State == Results && s.HasResults }
