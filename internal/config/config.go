// Package config provides configuration management for chaosflow.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Public hub coordinates used when no config overrides them.
const (
	DefaultPublicHubName   = "Public Hub"
	DefaultPublicHubURL    = "https://github.com/litmuschaos/chaos-charts"
	DefaultPublicHubBranch = "master"
)

// Config is the top-level configuration struct for chaosflow.
type Config struct {
	Portal    PortalConfig    `toml:"portal"`
	PublicHub PublicHubConfig `toml:"public_hub"`
	Draft     DraftConfig     `toml:"draft"`
	TUI       TUIConfig       `toml:"tui"`
	Log       LogConfig       `toml:"log"`
}

// PortalConfig contains the chaos portal connection settings.
type PortalConfig struct {
	// URL is the portal base URL; GraphQL queries are posted to URL + "/query".
	URL string `toml:"url"`

	// Username is the portal user whose registered hubs are listed.
	Username string `toml:"username"`

	// TokenEnv is the environment variable holding the bearer token.
	TokenEnv string `toml:"token_env"`

	// TimeoutSeconds bounds each query.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// PublicHubConfig describes the built-in public chart catalog.
type PublicHubConfig struct {
	// Name is the display name of the public hub.
	Name string `toml:"name"`

	// RepoURL is the public catalog repository root.
	RepoURL string `toml:"repo_url"`

	// RepoBranch is the public catalog branch.
	RepoBranch string `toml:"repo_branch"`

	// ChartsSource is a local directory or http(s) URL of a chart index.
	// When empty the public hub is fetched from the portal like any other hub.
	ChartsSource string `toml:"charts_source"`
}

// DraftConfig selects where the workflow draft lives between wizard steps.
type DraftConfig struct {
	// Backend is one of: "file", "memory", "redis".
	Backend string `toml:"backend"`

	// Path is the draft directory for the file backend.
	Path string `toml:"path"`

	// RedisAddr is the redis address for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// RedisDB is the redis database number.
	RedisDB int `toml:"redis_db"`

	// RedisKey is the key holding the draft.
	RedisKey string `toml:"redis_key"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Enabled controls whether to use the TUI (when false, falls back to CLI).
	Enabled bool `toml:"enabled"`

	// ShowHelp controls whether to show the key help footer.
	ShowHelp bool `toml:"show_help"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of: "debug", "info", "warn", "error".
	Level string `toml:"level"`

	// File receives logs while the TUI is running. Empty discards them.
	File string `toml:"file"`
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	usr, _ := user.Current()
	homeDir := ""
	username := "admin"
	if usr != nil {
		homeDir = usr.HomeDir
		if usr.Username != "" {
			username = usr.Username
		}
	}

	return &Config{
		Portal: PortalConfig{
			URL:            "http://localhost:8080",
			Username:       username,
			TokenEnv:       "CHAOSFLOW_TOKEN",
			TimeoutSeconds: 30,
		},
		PublicHub: PublicHubConfig{
			Name:         DefaultPublicHubName,
			RepoURL:      DefaultPublicHubURL,
			RepoBranch:   DefaultPublicHubBranch,
			ChartsSource: "",
		},
		Draft: DraftConfig{
			Backend:   "file",
			Path:      filepath.Join(homeDir, ".local", "share", "chaosflow", "drafts"),
			RedisAddr: "localhost:6379",
			RedisDB:   0,
			RedisKey:  "chaosflow:draft",
		},
		TUI: TUIConfig{
			Enabled:  true,
			ShowHelp: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	if c.Portal.URL == "" {
		return fmt.Errorf("portal.url cannot be empty")
	}
	if u, err := url.Parse(c.Portal.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("portal.url must be an absolute URL; got %q", c.Portal.URL)
	}
	if c.Portal.Username == "" {
		return fmt.Errorf("portal.username cannot be empty")
	}
	if c.Portal.TimeoutSeconds <= 0 {
		return fmt.Errorf("portal.timeout_seconds must be > 0; got %d", c.Portal.TimeoutSeconds)
	}

	if c.PublicHub.Name == "" {
		return fmt.Errorf("public_hub.name cannot be empty")
	}
	if c.PublicHub.RepoURL == "" {
		return fmt.Errorf("public_hub.repo_url cannot be empty")
	}
	if strings.HasSuffix(c.PublicHub.RepoURL, "/") {
		return fmt.Errorf("public_hub.repo_url must not end with '/': %q", c.PublicHub.RepoURL)
	}
	if c.PublicHub.RepoBranch == "" {
		return fmt.Errorf("public_hub.repo_branch cannot be empty")
	}

	validBackends := map[string]bool{
		"file":   true,
		"memory": true,
		"redis":  true,
	}
	if !validBackends[c.Draft.Backend] {
		return fmt.Errorf("draft.backend must be one of: file, memory, redis; got %q", c.Draft.Backend)
	}
	if c.Draft.Backend == "file" && c.Draft.Path == "" {
		return fmt.Errorf("draft.path cannot be empty when draft.backend is file")
	}
	if c.Draft.Backend == "redis" {
		if c.Draft.RedisAddr == "" {
			return fmt.Errorf("draft.redis_addr cannot be empty when draft.backend is redis")
		}
		if c.Draft.RedisKey == "" {
			return fmt.Errorf("draft.redis_key cannot be empty when draft.backend is redis")
		}
		if c.Draft.RedisDB < 0 {
			return fmt.Errorf("draft.redis_db must be >= 0; got %d", c.Draft.RedisDB)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}

	return nil
}

// Token returns the portal bearer token from the configured environment
// variable, or "" if unset.
func (c *Config) Token() string {
	if c.Portal.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Portal.TokenEnv)
}
