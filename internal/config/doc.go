// Package config loads the homeclip client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/homeclip/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty/non-positive, use defaults
//  5. HOMECLIP_SERVER, when set, overrides the server in every case
//
// # TOML Format
//
//	server = "clip.home.lan:8080"
//	autosave_delay_ms = 500
//	request_timeout_seconds = 10
//	download_dir = "~/Downloads"
//	log_file = "~/.local/state/homeclip/homeclip.log"
//	files_refresh_seconds = 30
//
// Every field is optional. Tilde expansion is performed for download_dir and
// log_file.
//
// # Default Values
//
//   - Server: 127.0.0.1:8080
//   - Autosave delay: 500ms
//   - Request timeout: 10s
//   - Download directory: ~/Downloads
//   - Log file: ~/.local/state/homeclip/homeclip.log
//   - Files refresh: disabled
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files (except
// os.ErrNotExist, which triggers defaults) and TOML parse errors.
package config
