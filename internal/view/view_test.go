package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/vsmbar/internal/results"
)

func queryReady(t *testing.T) *Machine {
	t.Helper()
	m := New(false)
	require.NoError(t, m.BeginBuild("/tmp/x"))
	require.NoError(t, m.IndexBuilt("Index built for corpus directory: /tmp/x"))
	return m
}

func TestNew_InitialStates(t *testing.T) {
	assert.Equal(t, CorpusEntry, New(false).State())
	assert.Equal(t, ScreenCorpus, New(false).Base())

	hosted := New(true)
	assert.Equal(t, Handshake, hosted.State())
	assert.Equal(t, ScreenNone, hosted.Base())
	assert.False(t, hosted.Snapshot().ShowCorpus())
}

func TestHandshake(t *testing.T) {
	m := New(true)
	m.Fail("backend unreachable")
	assert.Equal(t, Handshake, m.State(), "failed handshake must not reveal corpus entry")

	require.NoError(t, m.Greeted())
	assert.Equal(t, CorpusEntry, m.State())
	_, hasErr := m.Error()
	assert.False(t, hasErr)

	assert.ErrorIs(t, m.Greeted(), ErrInvalidTransition)
}

func TestEmptySubmissionsLeaveStateUnchanged(t *testing.T) {
	m := New(false)
	before := m.Snapshot()
	for _, in := range []string{"", "   ", "\t\n"} {
		assert.ErrorIs(t, m.BeginBuild(in), ErrEmptySubmission)
	}
	assert.Equal(t, before, m.Snapshot())

	m = queryReady(t)
	before = m.Snapshot()
	assert.ErrorIs(t, m.BeginQuery("  "), ErrEmptySubmission)
	assert.Equal(t, before, m.Snapshot())
}

func TestBuildFlow(t *testing.T) {
	m := New(false)
	require.NoError(t, m.BeginBuild("/tmp/x"))
	assert.Equal(t, Loading, m.State())
	assert.True(t, m.Busy())
	assert.Equal(t, ScreenCorpus, m.Base())

	m.Fail("previous error")
	assert.Equal(t, CorpusEntry, m.State())

	require.NoError(t, m.BeginBuild("/tmp/x"))
	require.NoError(t, m.IndexBuilt("Index built for corpus directory: /tmp/x"))
	assert.Equal(t, QueryEntry, m.State())
	assert.Equal(t, "/tmp/x", m.Indexed())
	_, hasErr := m.Error()
	assert.False(t, hasErr, "index built clears the overlay")
}

func TestBuildFailureKeepsCorpusBase(t *testing.T) {
	m := New(false)
	require.NoError(t, m.BeginBuild("/nope"))
	m.Fail("Invalid directory path")

	snap := m.Snapshot()
	assert.Equal(t, CorpusEntry, snap.State)
	assert.True(t, snap.ShowCorpus())
	assert.True(t, snap.HasError)
	assert.Equal(t, "Invalid directory path", snap.Error)
	assert.Equal(t, "/nope", snap.Directory)
}

func TestQueryFlow(t *testing.T) {
	m := queryReady(t)
	require.NoError(t, m.BeginQuery("cats"))
	assert.Equal(t, QueryLoading, m.State())
	assert.Equal(t, ScreenQuery, m.Base())

	list := results.List{Rows: []results.Row{{Name: "a.txt", Percent: "87.3%", Score: 0.873}}}
	require.NoError(t, m.ShowResults(list))
	snap := m.Snapshot()
	assert.Equal(t, Results, snap.State)
	assert.True(t, snap.ShowResults())
	assert.True(t, snap.ShowQuery())
	assert.Equal(t, "a.txt", snap.Results.Rows[0].Name)

	// A new query may be issued from Results.
	require.NoError(t, m.BeginQuery("dogs"))
	_, has := m.Results()
	assert.False(t, has, "previous results are discarded when a new query begins")
}

func TestQueryFailureKeepsQueryBase(t *testing.T) {
	m := queryReady(t)
	require.NoError(t, m.BeginQuery("cats"))
	m.Fail("disk full")

	snap := m.Snapshot()
	assert.Equal(t, QueryEntry, snap.State)
	assert.Equal(t, "disk full", snap.Error)
	assert.True(t, snap.ShowQuery())
	assert.False(t, snap.ShowResults())

	// The overlay never blocks a new submission.
	require.NoError(t, m.BeginQuery("cats"))
}

func TestEscapeResetsSession(t *testing.T) {
	m := queryReady(t)
	require.NoError(t, m.BeginQuery("cats"))
	require.NoError(t, m.ShowResults(results.List{}))

	assert.True(t, m.Escape())
	snap := m.Snapshot()
	assert.Equal(t, CorpusEntry, snap.State)
	assert.Empty(t, snap.Directory)
	assert.Empty(t, snap.Query)
	assert.Empty(t, snap.Indexed)
	assert.False(t, snap.HasResults)
}

func TestEscapeInCorpusEntry(t *testing.T) {
	m := New(false)
	assert.False(t, m.Escape())

	m.Fail("boom")
	assert.True(t, m.Escape())
	_, hasErr := m.Error()
	assert.False(t, hasErr)

	h := New(true)
	assert.False(t, h.Escape())
	assert.Equal(t, Handshake, h.State())
}

func TestInvalidTransitions(t *testing.T) {
	m := New(false)
	assert.ErrorIs(t, m.BeginQuery("cats"), ErrInvalidTransition)
	assert.ErrorIs(t, m.IndexBuilt("x"), ErrInvalidTransition)
	assert.ErrorIs(t, m.ShowResults(results.List{}), ErrInvalidTransition)

	q := queryReady(t)
	assert.ErrorIs(t, q.BeginBuild("/tmp/y"), ErrInvalidTransition)
}

func TestCorpusAndQueryNeverBothActive(t *testing.T) {
	for s := Handshake; s <= Results; s++ {
		snap := Snapshot{State: s, Base: baseOf(s)}
		assert.False(t, snap.ShowCorpus() && snap.ShowQuery(), "state %s", s)
	}
}

func TestDismiss(t *testing.T) {
	m := New(false)
	m.Fail("boom")
	m.Dismiss()
	msg, hasErr := m.Error()
	assert.False(t, hasErr)
	assert.Empty(t, msg)
}
