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
)

// Config captures the client settings.
type Config struct {
	Server         string
	AutosaveDelay  time.Duration
	RequestTimeout time.Duration
	DownloadDir    string
	LogFile        string
	FilesRefresh   time.Duration // zero disables periodic file list refresh
}

// ServerEnv overrides the server setting when non-empty.
const ServerEnv = "HOMECLIP_SERVER"

const (
	defaultConfigPath     = "~/.config/homeclip/config.toml"
	defaultServer         = "127.0.0.1:8080"
	defaultAutosaveDelay  = 500 * time.Millisecond
	defaultRequestTimeout = 10 * time.Second
	defaultDownloadDir    = "~/Downloads"
	defaultLogFile        = "~/.local/state/homeclip/homeclip.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server:         defaultServer,
		AutosaveDelay:  defaultAutosaveDelay,
		RequestTimeout: defaultRequestTimeout,
		DownloadDir:    mustExpand(defaultDownloadDir),
		LogFile:        mustExpand(defaultLogFile),
	}
}

// Load locates and parses the homeclip config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
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
		Server                string `toml:"server"`
		AutosaveDelayMS       int    `toml:"autosave_delay_ms"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		DownloadDir           string `toml:"download_dir"`
		LogFile               string `toml:"log_file"`
		FilesRefreshSeconds   int    `toml:"files_refresh_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if server := strings.TrimSpace(raw.Server); server != "" {
		cfg.Server = server
	}
	if raw.AutosaveDelayMS > 0 {
		cfg.AutosaveDelay = time.Duration(raw.AutosaveDelayMS) * time.Millisecond
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if dir := strings.TrimSpace(raw.DownloadDir); dir != "" {
		cfg.DownloadDir = mustExpand(dir)
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if raw.FilesRefreshSeconds > 0 {
		cfg.FilesRefresh = time.Duration(raw.FilesRefreshSeconds) * time.Second
	}
	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if server := strings.TrimSpace(os.Getenv(ServerEnv)); server != "" {
		cfg.Server = server
	}
}

// LogDir returns the directory holding the client log file.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.LogFile)
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

// ExpandPath expands a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
