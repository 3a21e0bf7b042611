// Package cli provides Cobra command definitions for chaosflow.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/config"
)

// InitOptions contains the options for the init command.
type InitOptions struct {
	// Scriptable/flag options for --no-tui mode
	PortalURL    string
	Username     string
	TokenEnv     string
	ChartsSource string
	Backend      string
	DraftPath    string
	RedisAddr    string
	Force        bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize chaosflow configuration",
		Long: `Initialize chaosflow configuration.

The init command guides you through setting up chaosflow:
- Point it at your chaos portal and choose the portal user
- Choose where the public hub's charts come from
- Choose where the workflow draft is kept (file, memory or redis)

Use --no-tui with flags for scripted setup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.PortalURL, "portal-url", "", "chaos portal base URL")
	cmd.Flags().StringVar(&opts.Username, "username", "", "portal username")
	cmd.Flags().StringVar(&opts.TokenEnv, "token-env", "", "environment variable holding the portal token")
	cmd.Flags().StringVar(&opts.ChartsSource, "charts-source", "", "local directory or URL of the public hub charts")
	cmd.Flags().StringVar(&opts.Backend, "draft-backend", "", "draft backend: file, memory or redis")
	cmd.Flags().StringVar(&opts.DraftPath, "draft-path", "", "draft directory for the file backend")
	cmd.Flags().StringVar(&opts.RedisAddr, "redis-addr", "", "redis address for the redis backend")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(out io.Writer, opts *InitOptions) error {
	// Check if --no-tui mode
	if IsNoTUI() {
		return runInitNonInteractive(out, opts)
	}

	// Interactive TUI mode
	return runInitInteractive(out, opts)
}

// runInitInteractive runs the init wizard with TUI.
func runInitInteractive(out io.Writer, opts *InitOptions) error {
	cfg := config.DefaultConfig()
	applyInitOptions(cfg, opts)

	// Step 1: Portal
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Portal URL").
				Description("Base URL of the chaos portal; queries go to <url>/query").
				Value(&cfg.Portal.URL),
			huh.NewInput().
				Title("Username").
				Description("Portal user whose registered hubs are listed").
				Value(&cfg.Portal.Username),
			huh.NewInput().
				Title("Token variable").
				Description("Environment variable holding the portal token").
				Value(&cfg.Portal.TokenEnv),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	// Step 2: Public hub and draft backend
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Public hub charts").
				Description("Local chaos-charts checkout or chart index URL; empty asks the portal").
				Value(&cfg.PublicHub.ChartsSource),
			huh.NewSelect[string]().
				Title("Draft storage").
				Description("Where the workflow draft is kept between steps").
				Options(
					huh.NewOption("File - a YAML file on this machine", "file"),
					huh.NewOption("Redis - shared between machines", "redis"),
					huh.NewOption("Memory - lost when the command exits", "memory"),
				).
				Value(&cfg.Draft.Backend),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	// Step 3: Backend details
	var field huh.Field
	switch cfg.Draft.Backend {
	case "file":
		field = huh.NewInput().Title("Draft directory").Value(&cfg.Draft.Path)
	case "redis":
		field = huh.NewInput().Title("Redis address").Value(&cfg.Draft.RedisAddr)
	}
	if field != nil {
		if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
			return fmt.Errorf("form error: %w", err)
		}
	}

	configPath, err := writeInitConfig(cfg, opts.Force)
	if err != nil {
		return err
	}

	// Summary
	_, _ = fmt.Fprintln(out, "\n✓ Configuration written successfully!")
	_, _ = fmt.Fprintf(out, "  Config: %s\n", configPath)
	_, _ = fmt.Fprintf(out, "  Portal: %s\n", cfg.Portal.URL)
	_, _ = fmt.Fprintf(out, "  Draft:  %s\n", cfg.Draft.Backend)
	_, _ = fmt.Fprintln(out, "\nYou're ready to go! Try 'chaosflow hubs' to verify.")
	return nil
}

// runInitNonInteractive runs init in non-TUI mode using flags.
func runInitNonInteractive(out io.Writer, opts *InitOptions) error {
	cfg := config.DefaultConfig()
	applyInitOptions(cfg, opts)

	configPath, err := writeInitConfig(cfg, opts.Force)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Configuration written to: %s\n", configPath)
	return nil
}

func applyInitOptions(cfg *config.Config, opts *InitOptions) {
	if opts.PortalURL != "" {
		cfg.Portal.URL = opts.PortalURL
	}
	if opts.Username != "" {
		cfg.Portal.Username = opts.Username
	}
	if opts.TokenEnv != "" {
		cfg.Portal.TokenEnv = opts.TokenEnv
	}
	if opts.ChartsSource != "" {
		cfg.PublicHub.ChartsSource = opts.ChartsSource
	}
	if opts.Backend != "" {
		cfg.Draft.Backend = opts.Backend
	}
	if opts.DraftPath != "" {
		cfg.Draft.Path = opts.DraftPath
	}
	if opts.RedisAddr != "" {
		cfg.Draft.RedisAddr = opts.RedisAddr
	}
}

// writeInitConfig validates cfg and writes it to the configured path.
func writeInitConfig(cfg *config.Config, force bool) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("config validation failed: %w", err)
	}

	path := getConfigPath(configPath())
	if path == "" {
		return "", fmt.Errorf("cannot determine config path; pass --config")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Write(path, cfg); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// getConfigPath returns the config path to use.
func getConfigPath(path string) string {
	if path != "" {
		return path
	}
	return config.DefaultConfigPath()
}
