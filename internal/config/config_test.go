package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/vsmbar/internal/vsm"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend != vsm.Local {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, vsm.Local)
	}
	if cfg.LocalURL != vsm.DefaultLocalURL {
		t.Fatalf("LocalURL = %q, want %q", cfg.LocalURL, vsm.DefaultLocalURL)
	}
	if cfg.HostedURL != vsm.DefaultHostedURL {
		t.Fatalf("HostedURL = %q, want %q", cfg.HostedURL, vsm.DefaultHostedURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("RequestTimeout = %v, want 0", cfg.RequestTimeout)
	}

	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if !strings.HasPrefix(cfg.HistoryPath, home) {
		t.Fatalf("HistoryPath = %q, want it under HOME %q", cfg.HistoryPath, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
backend = "  hosted "
local_url = "  10.0.0.5:9999  "
request_timeout = "45s"
log_level = "DEBUG"
log_dir = "  ~/.vsmbar/logs  "
history_path = "~/.vsmbar/h.db"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend != vsm.Hosted {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, vsm.Hosted)
	}
	if cfg.LocalURL != "10.0.0.5:9999" {
		t.Fatalf("LocalURL = %q, want %q", cfg.LocalURL, "10.0.0.5:9999")
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("RequestTimeout = %v, want 45s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogDir != filepath.Join(home, ".vsmbar", "logs") {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
	if cfg.HistoryPath != filepath.Join(home, ".vsmbar", "h.db") {
		t.Fatalf("HistoryPath = %q", cfg.HistoryPath)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
backend = "   "
local_url = ""
log_dir = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend != vsm.Local {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, vsm.Local)
	}
	if cfg.LocalURL != vsm.DefaultLocalURL {
		t.Fatalf("LocalURL = %q, want %q", cfg.LocalURL, vsm.DefaultLocalURL)
	}
	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`backend = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidTimeoutFails(t *testing.T) {
	for _, value := range []string{"soon", "-5s"} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(`request_timeout = "`+value+`"`), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "request_timeout") {
			t.Fatalf("Load(%q) error = %v, want request_timeout error", value, err)
		}
	}
}

func TestURL_SelectsBackend(t *testing.T) {
	cfg := Config{LocalURL: "http://127.0.0.1:9000"}
	if got := cfg.URL(vsm.Local); got != "http://127.0.0.1:9000" {
		t.Fatalf("URL(local) = %q", got)
	}
	if got := cfg.URL(vsm.Hosted); got != vsm.DefaultHostedURL {
		t.Fatalf("URL(hosted) = %q, want %q", got, vsm.DefaultHostedURL)
	}
	if got := (Config{}).URL(vsm.Local); got != vsm.DefaultLocalURL {
		t.Fatalf("URL(local) on zero Config = %q", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogDirOrDefault_DefaultsWhenEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogDirOrDefault()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogDirOrDefault = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/vsmbar/logs")) {
		t.Fatalf("LogDirOrDefault = %q, want it to end with /vsmbar/logs", got)
	}
}
