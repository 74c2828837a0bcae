package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/vsmbar/internal/vsm"
)

// Config captures the settings vsmbar reads at startup.
type Config struct {
	Backend        vsm.Backend
	LocalURL       string
	HostedURL      string
	RequestTimeout time.Duration
	LogLevel       string
	LogDir         string
	HistoryPath    string
}

const (
	defaultConfigPath  = "~/.config/vsmbar/config.toml"
	defaultLogDir      = "~/.local/state/vsmbar/logs"
	defaultHistoryPath = "~/.local/state/vsmbar/history.db"
	defaultLogLevel    = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:     vsm.Local,
		LocalURL:    vsm.DefaultLocalURL,
		HostedURL:   vsm.DefaultHostedURL,
		LogLevel:    defaultLogLevel,
		LogDir:      mustExpand(defaultLogDir),
		HistoryPath: mustExpand(defaultHistoryPath),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Backend        string `toml:"backend"`
		LocalURL       string `toml:"local_url"`
		HostedURL      string `toml:"hosted_url"`
		RequestTimeout string `toml:"request_timeout"`
		LogLevel       string `toml:"log_level"`
		LogDir         string `toml:"log_dir"`
		HistoryPath    string `toml:"history_path"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Backend); v != "" {
		cfg.Backend = vsm.ParseBackend(v)
	}
	if v := strings.TrimSpace(raw.LocalURL); v != "" {
		cfg.LocalURL = v
	}
	if v := strings.TrimSpace(raw.HostedURL); v != "" {
		cfg.HostedURL = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: request_timeout: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("parse config: request_timeout must not be negative")
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.HistoryPath); v != "" {
		cfg.HistoryPath = mustExpand(v)
	}

	return cfg, nil
}

// URL returns the base URL for backend.
func (c Config) URL(b vsm.Backend) string {
	if b == vsm.Hosted {
		if strings.TrimSpace(c.HostedURL) == "" {
			return vsm.DefaultHostedURL
		}
		return c.HostedURL
	}
	if strings.TrimSpace(c.LocalURL) == "" {
		return vsm.DefaultLocalURL
	}
	return c.LocalURL
}

// LogDirOrDefault returns the log directory, expanding the default when unset.
func (c Config) LogDirOrDefault() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir)
	}
	return c.LogDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
