package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/vsmbar/internal/results"
	"github.com/five82/vsmbar/internal/view"
	"github.com/five82/vsmbar/internal/vsm"
)

// Kind names the request a submission produced.
type Kind int

const (
	Greet Kind = iota + 1
	BuildIndex
	RunQuery
)

func (k Kind) String() string {
	switch k {
	case Greet:
		return "greet"
	case BuildIndex:
		return "build_index"
	case RunQuery:
		return "run_query"
	default:
		return "unknown"
	}
}

// Request is one issued backend call.
type Request struct {
	Seq     uint64
	Kind    Kind
	Backend vsm.Backend
	URL     string
	Arg     string
}

// ResponseMsg is delivered to the event loop when a Request resolves.
type ResponseMsg struct {
	Request Request
	Doc     vsm.Document
	Err     error
}

// Event reports what Apply did with a response.
type Event int

const (
	EventNone Event = iota
	EventGreeted
	EventIndexBuilt
	EventResults
	EventFailed
	EventStale
)

func (e Event) String() string {
	switch e {
	case EventGreeted:
		return "greeted"
	case EventIndexBuilt:
		return "index_built"
	case EventResults:
		return "results"
	case EventFailed:
		return "failed"
	case EventStale:
		return "stale"
	default:
		return "none"
	}
}

// ErrUnknownBackend is returned when no Searcher is registered for a backend.
var ErrUnknownBackend = errors.New("unknown backend")

// Controller is the only caller of the backend and the only mutator of the
// view state. It is not safe for concurrent use; all methods run on the
// Bubble Tea event loop. Backend calls run inside the returned commands.
type Controller struct {
	ctx      context.Context
	backends map[vsm.Backend]vsm.Searcher
	backend  vsm.Backend
	view     *view.Machine
	renderer results.Renderer
	log      *log.Logger

	seq     uint64
	pending *Request
}

// New returns a Controller targeting initial. ctx bounds every request it
// issues. Call Start to issue the hosted handshake.
func New(ctx context.Context, backends map[vsm.Backend]vsm.Searcher, initial vsm.Backend, logger *log.Logger) (*Controller, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if _, ok := backends[initial]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, initial)
	}
	c := &Controller{
		ctx:      ctx,
		backends: backends,
		backend:  initial,
		view:     view.New(initial == vsm.Hosted),
		renderer: results.NewRenderer(logger),
		log:      logger,
	}
	return c, nil
}

// Start issues the greeting when the hosted backend is selected.
func (c *Controller) Start() tea.Cmd {
	if c.backend != vsm.Hosted {
		return nil
	}
	return c.issue(Greet, "")
}

// SelectBackend switches the target backend and resets the session. Hosted
// issues the handshake immediately; local reveals CorpusEntry at once.
func (c *Controller) SelectBackend(b vsm.Backend) (tea.Cmd, error) {
	if _, ok := c.backends[b]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, b)
	}
	c.backend = b
	c.abandon()
	c.view.Reset(b == vsm.Hosted)
	c.log.Info("backend selected", "backend", b)
	if b == vsm.Hosted {
		return c.issue(Greet, ""), nil
	}
	return nil, nil
}

// ToggleBackend switches between local and hosted.
func (c *Controller) ToggleBackend() (tea.Cmd, error) {
	return c.SelectBackend(c.backend.Other())
}

// SubmitDirectory issues BuildIndex for dir. Whitespace-only input returns
// view.ErrEmptySubmission and issues nothing.
func (c *Controller) SubmitDirectory(dir string) (tea.Cmd, error) {
	if err := c.view.BeginBuild(dir); err != nil {
		return nil, err
	}
	return c.issue(BuildIndex, dir), nil
}

// SubmitQuery issues a search for q. Whitespace-only input returns
// view.ErrEmptySubmission and issues nothing.
func (c *Controller) SubmitQuery(q string) (tea.Cmd, error) {
	if err := c.view.BeginQuery(q); err != nil {
		return nil, err
	}
	return c.issue(RunQuery, q), nil
}

// Retry re-issues the handshake while it has not succeeded.
func (c *Controller) Retry() tea.Cmd {
	if c.view.State() != view.Handshake {
		return nil
	}
	return c.issue(Greet, "")
}

// Escape resets the session to CorpusEntry. Any outstanding response is
// dropped when it arrives.
func (c *Controller) Escape() bool {
	from := c.view.State()
	if !c.view.Escape() {
		return false
	}
	if from != view.CorpusEntry {
		c.abandon()
		c.log.Debug("session reset", "from", from)
	}
	return true
}

// Dismiss clears the error overlay.
func (c *Controller) Dismiss() { c.view.Dismiss() }

// Apply interprets a resolved request and drives the matching transition.
// Responses to anything but the latest issued request are discarded.
func (c *Controller) Apply(msg ResponseMsg) Event {
	req := msg.Request
	if c.pending == nil || req.Seq != c.seq {
		c.log.Debug("discarding stale response", "seq", req.Seq, "latest", c.seq, "kind", req.Kind)
		return EventStale
	}
	c.pending = nil

	if msg.Err != nil {
		c.fail(req, vsm.KindOf(msg.Err), msg.Err.Error())
		return EventFailed
	}

	if bad := msg.Doc.Invalid(); len(bad) > 0 {
		c.log.Warn("ignored malformed fields", "kind", vsm.MalformedPayload, "request", req.Kind, "fields", bad)
	}

	out := vsm.Classify(msg.Doc)
	if out.Kind == vsm.OutcomeBackendError {
		c.fail(req, vsm.BackendError, out.Message)
		return EventFailed
	}

	switch req.Kind {
	case Greet:
		if out.Kind == vsm.OutcomeGreeting {
			if err := c.view.Greeted(); err != nil {
				c.log.Debug("greeting ignored", "error", err)
				return EventNone
			}
			c.log.Info("backend greeted", "backend", req.Backend, "message", out.Message)
			return EventGreeted
		}
	case BuildIndex:
		if out.Kind == vsm.OutcomeIndexBuilt {
			if err := c.view.IndexBuilt(out.Message); err != nil {
				c.log.Debug("index built ignored", "error", err)
				return EventNone
			}
			c.log.Info("index built", "dir", req.Arg, "indexed", vsm.IndexedPath(out.Message))
			return EventIndexBuilt
		}
	case RunQuery:
		if out.Kind == vsm.OutcomeResults {
			list := c.renderer.RenderOutcome(out)
			if err := c.view.ShowResults(list); err != nil {
				c.log.Debug("results ignored", "error", err)
				return EventNone
			}
			c.log.Info("search complete", "query", req.Arg, "matches", list.Matches(), "skipped", list.Dropped, "elapsed", list.Elapsed)
			return EventResults
		}
	}

	c.fail(req, vsm.UnrecognizedResponse, unrecognized(req, out))
	return EventFailed
}

func unrecognized(req Request, out vsm.Outcome) string {
	if out.Message != "" {
		return out.Message
	}
	return fmt.Sprintf("unrecognized response to %s", req.Kind)
}

func (c *Controller) fail(req Request, kind vsm.ErrorKind, message string) {
	c.log.Warn("request failed", "kind", kind, "request", req.Kind, "url", req.URL, "error", message)
	c.view.Fail(message)
}

// issue allocates the next sequence number and returns the command that
// performs the call.
func (c *Controller) issue(kind Kind, arg string) tea.Cmd {
	searcher := c.backends[c.backend]
	c.seq++
	req := Request{
		Seq:     c.seq,
		Kind:    kind,
		Backend: c.backend,
		URL:     requestURL(searcher, kind, arg),
		Arg:     arg,
	}
	c.pending = &req
	c.log.Debug("request issued", "seq", req.Seq, "kind", kind, "url", req.URL)

	ctx := c.ctx
	return func() tea.Msg {
		var (
			doc vsm.Document
			err error
		)
		switch req.Kind {
		case Greet:
			doc, err = searcher.Greet(ctx)
		case BuildIndex:
			doc, err = searcher.BuildIndex(ctx, req.Arg)
		case RunQuery:
			doc, err = searcher.Search(ctx, req.Arg)
		}
		return ResponseMsg{Request: req, Doc: doc, Err: err}
	}
}

func (c *Controller) abandon() {
	if c.pending != nil {
		c.log.Debug("abandoning request", "seq", c.pending.Seq, "kind", c.pending.Kind)
	}
	c.seq++
	c.pending = nil
}

func requestURL(s vsm.Searcher, kind Kind, arg string) string {
	switch kind {
	case BuildIndex:
		return fmt.Sprintf("%s %s", http.MethodPost, s.URL(vsm.PathBuild, url.Values{"corpus_dir": {arg}}))
	case RunQuery:
		return fmt.Sprintf("%s %s", http.MethodGet, s.URL(vsm.PathSearch, url.Values{"query": {arg}}))
	default:
		return fmt.Sprintf("%s %s", http.MethodGet, s.URL(vsm.PathRoot, nil))
	}
}

// State returns a snapshot of the view state.
func (c *Controller) State() view.Snapshot { return c.view.Snapshot() }

// Backend returns the selected backend.
func (c *Controller) Backend() vsm.Backend { return c.backend }

// BrowseAllowed reports whether the directory browser may be offered.
func (c *Controller) BrowseAllowed() bool {
	return c.backend == vsm.Local && c.view.Base() == view.ScreenCorpus
}

// Pending returns the outstanding request, if any.
func (c *Controller) Pending() (Request, bool) {
	if c.pending == nil {
		return Request{}, false
	}
	return *c.pending, true
}
