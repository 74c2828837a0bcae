package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/vsmbar/internal/config"
	"github.com/five82/vsmbar/internal/hotkey"
	"github.com/five82/vsmbar/internal/vsm"
)

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		pref       string
		configured vsm.Backend
		want       vsm.Backend
	}{
		{name: "flag wins", flag: "hosted", pref: "local", configured: vsm.Local, want: vsm.Hosted},
		{name: "prefs over config", pref: "hosted", configured: vsm.Local, want: vsm.Hosted},
		{name: "config", configured: vsm.Hosted, want: vsm.Hosted},
		{name: "default", want: vsm.Local},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectBackend(tt.flag, tt.pref, tt.configured))
		})
	}
}

func TestNewSearchers(t *testing.T) {
	cfg := config.Default()
	cfg.LocalURL = "http://127.0.0.1:9000/"
	backends, err := newSearchers(cfg)
	require.NoError(t, err)
	require.Len(t, backends, 2)
	assert.Equal(t, "http://127.0.0.1:9000/build?corpus_dir=%2Ftmp", backends[vsm.Local].URL(vsm.PathBuild, map[string][]string{"corpus_dir": {"/tmp"}}))
	assert.Contains(t, backends[vsm.Hosted].URL(vsm.PathRoot, nil), "onrender.com")
}

func TestNewSearchers_BadURL(t *testing.T) {
	cfg := config.Default()
	cfg.HostedURL = "http://"
	_, err := newSearchers(cfg)
	assert.Error(t, err)
}

func TestBindHotkey_ForwardsPresses(t *testing.T) {
	fake := &hotkey.Fake{}
	activations, stop := bindHotkey(context.Background(), fake, log.New(io.Discard))
	defer stop()
	require.NotNil(t, activations)
	assert.Equal(t, []hotkey.Combo{hotkey.ToggleCombo}, fake.Combos())

	require.True(t, fake.Press())
	select {
	case <-activations:
	case <-time.After(time.Second):
		t.Fatal("activation not forwarded")
	}

	stop()
	assert.Zero(t, fake.Live())
}

func TestBindHotkey_FailureIsNotFatal(t *testing.T) {
	fake := &hotkey.Fake{Err: errors.New("grab failed")}
	activations, stop := bindHotkey(context.Background(), fake, log.New(io.Discard))
	assert.Nil(t, activations)
	stop()

	activations, stop = bindHotkey(context.Background(), hotkey.Unsupported{}, log.New(io.Discard))
	assert.Nil(t, activations)
	stop()
}
