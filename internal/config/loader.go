// Package config provides configuration management for chaosflow.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

// DefaultConfigPath returns ~/.config/chaosflow/config.toml, or "" if the
// home directory cannot be determined.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "chaosflow", "config.toml")
}

// DetectConfigPath returns the default config path if a file exists there,
// or empty string if none exists.
func DetectConfigPath() string {
	configPath := DefaultConfigPath()
	if configPath == "" {
		return ""
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}
	return ""
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &cferrors.ConfigError{Path: path, Err: cferrors.ErrNotFound}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &cferrors.ConfigError{Path: path, Err: fmt.Errorf("failed to read: %w", err)}
	}

	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &cferrors.ConfigError{Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}

	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %s", cferrors.ErrInvalid, err)}
	}

	return cfg, nil
}

// LoadWithDefaults loads path if given, otherwise the detected XDG config.
// If no config file is found, returns validated defaults.
func LoadWithDefaults(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	configPath := DetectConfigPath()
	if configPath == "" {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		expandPath(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &cferrors.ConfigError{Err: fmt.Errorf("%w: %s", cferrors.ErrInvalid, err)}
		}
		return cfg, nil
	}

	return Load(configPath)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: CHAOSFLOW_<SECTION>_<FIELD>
//
// Examples:
// - CHAOSFLOW_PORTAL_URL overrides [portal].url
// - CHAOSFLOW_DRAFT_BACKEND overrides [draft].backend
func applyEnvOverrides(c *Config) {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	// Portal section
	applyString("CHAOSFLOW_PORTAL_URL", &c.Portal.URL)
	applyString("CHAOSFLOW_PORTAL_USERNAME", &c.Portal.Username)
	applyString("CHAOSFLOW_PORTAL_TOKEN_ENV", &c.Portal.TokenEnv)
	applyInt("CHAOSFLOW_PORTAL_TIMEOUT_SECONDS", &c.Portal.TimeoutSeconds)

	// Public hub section
	applyString("CHAOSFLOW_PUBLIC_HUB_NAME", &c.PublicHub.Name)
	applyString("CHAOSFLOW_PUBLIC_HUB_REPO_URL", &c.PublicHub.RepoURL)
	applyString("CHAOSFLOW_PUBLIC_HUB_REPO_BRANCH", &c.PublicHub.RepoBranch)
	applyString("CHAOSFLOW_PUBLIC_HUB_CHARTS_SOURCE", &c.PublicHub.ChartsSource)

	// Draft section
	applyString("CHAOSFLOW_DRAFT_BACKEND", &c.Draft.Backend)
	applyString("CHAOSFLOW_DRAFT_PATH", &c.Draft.Path)
	applyString("CHAOSFLOW_DRAFT_REDIS_ADDR", &c.Draft.RedisAddr)
	applyInt("CHAOSFLOW_DRAFT_REDIS_DB", &c.Draft.RedisDB)
	applyString("CHAOSFLOW_DRAFT_REDIS_KEY", &c.Draft.RedisKey)

	// TUI section
	applyBool("CHAOSFLOW_TUI_ENABLED", &c.TUI.Enabled)
	applyBool("CHAOSFLOW_TUI_SHOW_HELP", &c.TUI.ShowHelp)

	// Log section
	applyString("CHAOSFLOW_LOG_LEVEL", &c.Log.Level)
	applyString("CHAOSFLOW_LOG_FILE", &c.Log.File)
}

// expandPath expands ~ to the home directory in path-valued fields.
func expandPath(c *Config) {
	for _, p := range []*string{&c.Draft.Path, &c.Log.File, &c.PublicHub.ChartsSource} {
		if strings.HasPrefix(*p, "~/") || *p == "~" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				*p = filepath.Join(homeDir, strings.TrimPrefix(*p, "~/"))
			}
		}
	}
}
