// Package cli provides global state and utilities for CLI commands.
package cli

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/app"
	"github.com/chazuruo/chaosflow/internal/config"
	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/logging"
)

var (
	// NoTUI indicates that TUI/interactive mode should be disabled.
	// This is set by the global --no-tui flag.
	NoTUI bool

	// ConfigPath is the --config flag; empty means the default location.
	ConfigPath string

	// Verbose forces debug logging.
	Verbose bool

	// globalMutex protects the flag values for concurrent access.
	globalMutex sync.RWMutex
)

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&NoTUI, "no-tui", false,
		"disable TUI/interactive mode; use plain text or JSON output")
	cmd.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"config file path (default ~/.config/chaosflow/config.toml)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false,
		"enable debug logging")
}

// IsNoTUI returns true if TUI mode is disabled.
func IsNoTUI() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return NoTUI
}

func configPath() string {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return ConfigPath
}

func isVerbose() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return Verbose
}

// useTUI reports whether a command should start its terminal UI.
func useTUI(cfg *config.Config) bool {
	return !IsNoTUI() && cfg.TUI.Enabled
}

// loadConfig loads the config named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	return config.LoadWithDefaults(configPath())
}

// openEnv builds the logger and opens the app environment. When tui is set
// logs are kept off the terminal. The returned func releases everything.
func openEnv(cfg *config.Config, stderr io.Writer, tui bool) (*app.Env, func(), error) {
	var (
		logger   *slog.Logger
		closeLog = func() error { return nil }
		err      error
	)
	if tui {
		logger, closeLog, err = logging.ForTUI(cfg.Log, isVerbose())
	} else {
		if stderr == nil {
			stderr = os.Stderr
		}
		logger, err = logging.New(cfg.Log, stderr, isVerbose())
	}
	if err != nil {
		return nil, nil, cferrors.Wrap(err, "open log")
	}

	env, err := app.Open(cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	return env, func() {
		_ = env.Close()
		_ = closeLog()
	}, nil
}
