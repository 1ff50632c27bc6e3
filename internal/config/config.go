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

// Config captures the settings shelf needs to reach the Brickery API.
type Config struct {
	APIBase         string
	Token           string
	RefreshInterval time.Duration
}

const (
	defaultConfigPath     = "~/.config/shelf/config.toml"
	defaultAPIBase        = "http://127.0.0.1:8000"
	defaultRefreshSeconds = 30
	minRefreshSeconds     = 5
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the shelf config, falling back to defaults when
// the file is missing. An empty token is valid; the client then refuses
// personal-collection calls locally instead of hitting the network.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:         defaultAPIBase,
		RefreshInterval: defaultRefreshSeconds * time.Second,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase        string `toml:"api_base"`
		Token          string `toml:"token"`
		RefreshSeconds int    `toml:"refresh_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBase = strings.TrimSpace(raw.APIBase)
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}

	cfg.Token = strings.TrimSpace(raw.Token)
	if cfg.Token == "" {
		cfg.Token = strings.TrimSpace(os.Getenv("SHELF_TOKEN"))
	}

	seconds := raw.RefreshSeconds
	if seconds <= 0 {
		seconds = defaultRefreshSeconds
	}
	if seconds < minRefreshSeconds {
		seconds = minRefreshSeconds
	}
	cfg.RefreshInterval = time.Duration(seconds) * time.Second

	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
// The file is written with owner-only permissions since it holds the token.
func Save(path string, cfg Config) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw := struct {
		APIBase        string `toml:"api_base"`
		Token          string `toml:"token"`
		RefreshSeconds int    `toml:"refresh_seconds"`
	}{
		APIBase:        cfg.APIBase,
		Token:          cfg.Token,
		RefreshSeconds: int(cfg.RefreshInterval / time.Second),
	}

	bytes, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
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
