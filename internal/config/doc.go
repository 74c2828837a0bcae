// Package config loads vsmbar's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/vsmbar/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/vsmbar/config.toml
//   - Backend: local
//   - Local URL: http://localhost:8000
//   - Hosted URL: https://information-retrieval-vsm.onrender.com
//   - Request timeout: 0s (no client deadline)
//   - Log level: info
//   - Log directory: ~/.local/state/vsmbar/logs
//   - History database: ~/.local/state/vsmbar/history.db
//
// # TOML Format
//
//	backend = "hosted"
//	local_url = "http://localhost:8000"
//	request_timeout = "30s"
//	log_level = "debug"
//	log_dir = "~/.local/state/vsmbar/logs"
//	history_path = "~/.local/state/vsmbar/history.db"
//
// Every field is optional. Tilde expansion is performed for log_dir and
// history_path. The hosted_url and local_url keys exist for staging and
// tests; the UI itself only ever toggles between the two.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and invalid request_timeout durations
//
// Missing config files are NOT an error.
package config
