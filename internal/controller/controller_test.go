package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/vsmbar/internal/view"
	"github.com/five82/vsmbar/internal/vsm"
)

type call struct {
	kind Kind
	arg  string
}

// fakeSearcher answers from canned bodies and records every call.
type fakeSearcher struct {
	mu     sync.Mutex
	calls  []call
	greet  string
	build  string
	search string
	err    error
}

func (f *fakeSearcher) record(kind Kind, arg, body string) (vsm.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{kind: kind, arg: arg})
	f.mu.Unlock()
	if f.err != nil {
		return vsm.Document{}, f.err
	}
	var doc vsm.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return vsm.Document{}, err
	}
	return doc, nil
}

func (f *fakeSearcher) Greet(context.Context) (vsm.Document, error) {
	return f.record(Greet, "", f.greet)
}

func (f *fakeSearcher) BuildIndex(_ context.Context, dir string) (vsm.Document, error) {
	return f.record(BuildIndex, dir, f.build)
}

func (f *fakeSearcher) Search(_ context.Context, q string) (vsm.Document, error) {
	return f.record(RunQuery, q, f.search)
}

func (f *fakeSearcher) URL(path string, params url.Values) string {
	u := url.URL{Scheme: "http", Host: "fake", Path: path, RawQuery: params.Encode()}
	return u.String()
}

func (f *fakeSearcher) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newFake() *fakeSearcher {
	return &fakeSearcher{
		greet:  `{"message": "Welcome to the Vector Space Model Information Retrieval System!"}`,
		build:  `{"message": "Index built for corpus directory: /tmp/x"}`,
		search: `{"query": "cats", "results": [["a.txt", 0.873], ["b.txt", 0.5]], "elapsed_time": 0.0021}`,
	}
}

func newController(t *testing.T, initial vsm.Backend, local, hosted vsm.Searcher) *Controller {
	t.Helper()
	c, err := New(context.Background(), map[vsm.Backend]vsm.Searcher{
		vsm.Local:  local,
		vsm.Hosted: hosted,
	}, initial, nil)
	require.NoError(t, err)
	return c
}

func run(t *testing.T, c *Controller, cmd tea.Cmd) Event {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ResponseMsg)
	require.True(t, ok)
	return c.Apply(msg)
}

func toQueryEntry(t *testing.T, c *Controller) {
	t.Helper()
	cmd, err := c.SubmitDirectory("/tmp/x")
	require.NoError(t, err)
	require.Equal(t, EventIndexBuilt, run(t, c, cmd))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), map[vsm.Backend]vsm.Searcher{vsm.Local: newFake()}, vsm.Hosted, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestLocalStartsAtCorpusEntry(t *testing.T) {
	local := newFake()
	c := newController(t, vsm.Local, local, newFake())

	assert.Nil(t, c.Start())
	assert.Equal(t, view.CorpusEntry, c.State().State)
	assert.True(t, c.BrowseAllowed())
	assert.Empty(t, local.Calls())
}

func TestSubmitDirectory_IssuesBuildWithExactPath(t *testing.T) {
	local := newFake()
	c := newController(t, vsm.Local, local, newFake())

	dir := "/tmp/my docs & notes"
	cmd, err := c.SubmitDirectory(dir)
	require.NoError(t, err)

	req, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, BuildIndex, req.Kind)
	assert.Equal(t, "POST http://fake/build?corpus_dir=%2Ftmp%2Fmy+docs+%26+notes", req.URL)
	assert.Equal(t, view.Loading, c.State().State)

	assert.Equal(t, EventIndexBuilt, run(t, c, cmd))
	assert.Equal(t, []call{{kind: BuildIndex, arg: dir}}, local.Calls())
}

func TestEmptySubmissionsIssueNothing(t *testing.T) {
	local := newFake()
	c := newController(t, vsm.Local, local, newFake())

	before := c.State()
	cmd, err := c.SubmitDirectory("   ")
	assert.ErrorIs(t, err, view.ErrEmptySubmission)
	assert.Nil(t, cmd)
	assert.Equal(t, before, c.State())

	toQueryEntry(t, c)
	before = c.State()
	cmd, err = c.SubmitQuery("")
	assert.ErrorIs(t, err, view.ErrEmptySubmission)
	assert.Nil(t, cmd)
	assert.Equal(t, before, c.State())

	_, pending := c.Pending()
	assert.False(t, pending)
	assert.Len(t, local.Calls(), 1)
}

func TestIndexBuiltClearsOverlay(t *testing.T) {
	local := newFake()
	local.build = `{"error": "Invalid directory path"}`
	c := newController(t, vsm.Local, local, newFake())

	cmd, err := c.SubmitDirectory("/nope")
	require.NoError(t, err)
	assert.Equal(t, EventFailed, run(t, c, cmd))
	require.True(t, c.State().HasError)

	local.build = `{"message": "Index built for corpus directory: /tmp/x"}`
	cmd, err = c.SubmitDirectory("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, EventIndexBuilt, run(t, c, cmd))

	snap := c.State()
	assert.Equal(t, view.QueryEntry, snap.State)
	assert.False(t, snap.HasError)
	assert.Equal(t, "Index built for corpus directory: /tmp/x", snap.IndexNote)
	assert.False(t, c.BrowseAllowed())
}

func TestBackendErrorKeepsBaseScreen(t *testing.T) {
	t.Run("build", func(t *testing.T) {
		local := newFake()
		local.build = `{"error": "disk full"}`
		c := newController(t, vsm.Local, local, newFake())

		cmd, err := c.SubmitDirectory("/tmp/x")
		require.NoError(t, err)
		assert.Equal(t, EventFailed, run(t, c, cmd))

		snap := c.State()
		assert.Equal(t, view.CorpusEntry, snap.State)
		assert.Equal(t, view.ScreenCorpus, snap.Base)
		assert.True(t, snap.HasError)
		assert.Equal(t, "disk full", snap.Error)
	})

	t.Run("search", func(t *testing.T) {
		local := newFake()
		local.search = `{"error": "disk full"}`
		c := newController(t, vsm.Local, local, newFake())
		toQueryEntry(t, c)

		cmd, err := c.SubmitQuery("cats")
		require.NoError(t, err)
		assert.Equal(t, EventFailed, run(t, c, cmd))

		snap := c.State()
		assert.Equal(t, view.QueryEntry, snap.State)
		assert.Equal(t, view.ScreenQuery, snap.Base)
		assert.Equal(t, "disk full", snap.Error)
	})
}

func TestEmptyBackendErrorUsesFallbackMessage(t *testing.T) {
	for _, body := range []string{`{"error": ""}`, `{"error": null}`, `{"error": "  "}`} {
		t.Run(body, func(t *testing.T) {
			local := newFake()
			local.build = body
			c := newController(t, vsm.Local, local, newFake())

			cmd, err := c.SubmitDirectory("/tmp/x")
			require.NoError(t, err)
			assert.Equal(t, EventFailed, run(t, c, cmd))

			snap := c.State()
			assert.Equal(t, view.CorpusEntry, snap.State)
			assert.True(t, snap.HasError)
			assert.Equal(t, vsm.BackendErrorFallback, snap.Error)
		})
	}
}

func TestMalformedElapsedTimeIsLoggedNotFatal(t *testing.T) {
	var logs bytes.Buffer
	local := newFake()
	local.search = `{"query": "cats", "results": [["a.txt", 0.5], ["lonely"]], "elapsed_time": "soon"}`
	c, err := New(context.Background(), map[vsm.Backend]vsm.Searcher{
		vsm.Local:  local,
		vsm.Hosted: newFake(),
	}, vsm.Local, log.New(&logs))
	require.NoError(t, err)
	toQueryEntry(t, c)

	cmd, err := c.SubmitQuery("cats")
	require.NoError(t, err)
	assert.Equal(t, EventResults, run(t, c, cmd))

	snap := c.State()
	assert.False(t, snap.HasError)
	assert.Equal(t, "1 result", snap.Results.Summary())
	assert.Contains(t, logs.String(), "ignored malformed fields")
	assert.Contains(t, logs.String(), "elapsed_time")
	assert.Contains(t, logs.String(), "skipped=1")
	assert.Contains(t, logs.String(), "indexed=/tmp/x")
}

func TestUnrecognizedBuildMessageFails(t *testing.T) {
	local := newFake()
	local.build = `{"message": "something else"}`
	c := newController(t, vsm.Local, local, newFake())

	cmd, err := c.SubmitDirectory("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, EventFailed, run(t, c, cmd))

	snap := c.State()
	assert.Equal(t, view.CorpusEntry, snap.State)
	assert.Equal(t, "something else", snap.Error)
}

func TestSearchWithoutResultsKeyFails(t *testing.T) {
	local := newFake()
	local.search = `{"status": "ok"}`
	c := newController(t, vsm.Local, local, newFake())
	toQueryEntry(t, c)

	cmd, err := c.SubmitQuery("cats")
	require.NoError(t, err)
	assert.Equal(t, EventFailed, run(t, c, cmd))
	assert.Equal(t, "unrecognized response to run_query", c.State().Error)
}

func TestResultsAreRenderedInOrder(t *testing.T) {
	c := newController(t, vsm.Local, newFake(), newFake())
	toQueryEntry(t, c)

	cmd, err := c.SubmitQuery("cats")
	require.NoError(t, err)
	assert.Equal(t, EventResults, run(t, c, cmd))

	snap := c.State()
	require.True(t, snap.ShowResults())
	require.Len(t, snap.Results.Rows, 2)
	assert.Equal(t, "a.txt", snap.Results.Rows[0].Name)
	assert.Equal(t, "87.3%", snap.Results.Rows[0].Percent)
	assert.Equal(t, "b.txt", snap.Results.Rows[1].Name)
	assert.Equal(t, "50.0%", snap.Results.Rows[1].Percent)
	assert.Equal(t, "cats", snap.Results.Query)
	assert.Equal(t, "2 results in 2.10ms", snap.Results.Summary())
}

func TestEmptyResultsShowPlaceholder(t *testing.T) {
	local := newFake()
	local.search = `{"results": []}`
	c := newController(t, vsm.Local, local, newFake())
	toQueryEntry(t, c)

	cmd, err := c.SubmitQuery("zebra")
	require.NoError(t, err)
	assert.Equal(t, EventResults, run(t, c, cmd))

	snap := c.State()
	assert.False(t, snap.HasError)
	require.Len(t, snap.Results.Rows, 1)
	assert.True(t, snap.Results.Rows[0].Placeholder)
}

func TestNetworkFailureShowsBanner(t *testing.T) {
	local := newFake()
	local.err = &vsm.Error{Kind: vsm.NetworkFailure, Msg: "backend unreachable", Err: errors.New("connection refused")}
	c := newController(t, vsm.Local, local, newFake())

	cmd, err := c.SubmitDirectory("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, EventFailed, run(t, c, cmd))
	assert.Equal(t, "backend unreachable: connection refused", c.State().Error)
	assert.Equal(t, view.CorpusEntry, c.State().State)
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	local := newFake()
	c := newController(t, vsm.Local, local, newFake())
	toQueryEntry(t, c)

	first, err := c.SubmitQuery("cats")
	require.NoError(t, err)
	local.search = `{"query": "dogs", "results": [["dogs.txt", 0.9]]}`
	second, err := c.SubmitQuery("dogs")
	require.NoError(t, err)

	// The second request resolves first; the late first one must not win.
	assert.Equal(t, EventResults, run(t, c, second))
	assert.Equal(t, EventStale, run(t, c, first))

	snap := c.State()
	assert.Equal(t, "dogs", snap.Query)
	assert.Equal(t, "dogs.txt", snap.Results.Rows[0].Name)
}

func TestEscapeDropsInFlightResponse(t *testing.T) {
	c := newController(t, vsm.Local, newFake(), newFake())
	toQueryEntry(t, c)

	cmd, err := c.SubmitQuery("cats")
	require.NoError(t, err)
	assert.True(t, c.Escape())
	assert.Equal(t, view.CorpusEntry, c.State().State)

	assert.Equal(t, EventStale, run(t, c, cmd))
	snap := c.State()
	assert.Equal(t, view.CorpusEntry, snap.State)
	assert.Empty(t, snap.Query)
	assert.False(t, snap.HasResults)
}

func TestEscapeFromResultsResets(t *testing.T) {
	c := newController(t, vsm.Local, newFake(), newFake())
	toQueryEntry(t, c)
	cmd, err := c.SubmitQuery("cats")
	require.NoError(t, err)
	require.Equal(t, EventResults, run(t, c, cmd))

	assert.True(t, c.Escape())
	snap := c.State()
	assert.Equal(t, view.CorpusEntry, snap.State)
	assert.Empty(t, snap.Directory)
	assert.Empty(t, snap.Query)
}

func TestHostedHandshake(t *testing.T) {
	hosted := newFake()
	c := newController(t, vsm.Local, newFake(), hosted)

	cmd, err := c.SelectBackend(vsm.Hosted)
	require.NoError(t, err)
	assert.Equal(t, view.Handshake, c.State().State)
	assert.False(t, c.BrowseAllowed())

	assert.Equal(t, EventGreeted, run(t, c, cmd))
	assert.Equal(t, view.CorpusEntry, c.State().State)
	assert.False(t, c.BrowseAllowed(), "browse stays hidden on hosted")
	assert.Equal(t, []call{{kind: Greet}}, hosted.Calls())
}

func TestHostedHandshakeFailureNeverRevealsCorpusEntry(t *testing.T) {
	cases := map[string]func(f *fakeSearcher){
		"network": func(f *fakeSearcher) {
			f.err = &vsm.Error{Kind: vsm.NetworkFailure, Msg: "backend unreachable", Err: errors.New("timeout")}
		},
		"error key":    func(f *fakeSearcher) { f.greet = `{"error": "maintenance"}` },
		"unrecognized": func(f *fakeSearcher) { f.greet = `{"message": "hello"}` },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			hosted := newFake()
			mutate(hosted)
			c := newController(t, vsm.Local, newFake(), hosted)

			cmd, err := c.SelectBackend(vsm.Hosted)
			require.NoError(t, err)
			assert.Equal(t, EventFailed, run(t, c, cmd))

			snap := c.State()
			assert.Equal(t, view.Handshake, snap.State)
			assert.False(t, snap.ShowCorpus())
			assert.True(t, snap.HasError)

			_, err = c.SubmitDirectory("/tmp/x")
			assert.ErrorIs(t, err, view.ErrInvalidTransition)
		})
	}
}

func TestRetryReissuesHandshake(t *testing.T) {
	hosted := newFake()
	hosted.err = errors.New("down")
	c := newController(t, vsm.Hosted, newFake(), hosted)

	assert.Equal(t, EventFailed, run(t, c, c.Start()))
	hosted.err = nil
	assert.Equal(t, EventGreeted, run(t, c, c.Retry()))
	assert.Nil(t, c.Retry(), "no handshake once greeted")
}

func TestSwitchBackendDropsOldResponses(t *testing.T) {
	local := newFake()
	c := newController(t, vsm.Local, local, newFake())

	cmd, err := c.SubmitDirectory("/tmp/x")
	require.NoError(t, err)
	_, err = c.ToggleBackend()
	require.NoError(t, err)
	assert.Equal(t, vsm.Hosted, c.Backend())

	assert.Equal(t, EventStale, run(t, c, cmd))
	assert.Equal(t, view.Handshake, c.State().State)

	_, err = c.ToggleBackend()
	require.NoError(t, err)
	assert.Equal(t, view.CorpusEntry, c.State().State)
	_, pending := c.Pending()
	assert.False(t, pending)
}

func TestAgainstHTTPBackend(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case vsm.PathRoot:
			_, _ = w.Write([]byte(`{"message": "Welcome to the Vector Space Model Information Retrieval System!"}`))
		case vsm.PathBuild:
			_, _ = w.Write([]byte(`{"message": "Index built for corpus directory: ` + r.URL.Query().Get("corpus_dir") + `"}`))
		case vsm.PathSearch:
			_, _ = w.Write([]byte(`{"query": "cats", "results": [["a.txt", 0.873]], "elapsed_time": 0.001}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := vsm.NewClient(server.URL)
	require.NoError(t, err)
	c := newController(t, vsm.Hosted, newFake(), client)

	require.Equal(t, EventGreeted, run(t, c, c.Start()))
	cmd, err := c.SubmitDirectory("/srv/corpus")
	require.NoError(t, err)
	require.Equal(t, EventIndexBuilt, run(t, c, cmd))
	cmd, err = c.SubmitQuery("cats and dogs")
	require.NoError(t, err)
	require.Equal(t, EventResults, run(t, c, cmd))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /",
		"POST /build?corpus_dir=%2Fsrv%2Fcorpus",
		"GET /search?query=cats+and+dogs",
	}, seen)
}
