package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/app"
)

// HubsOptions contains the options for the hubs command.
type HubsOptions struct {
	Format string
}

// NewHubsCommand creates the hubs command.
func NewHubsCommand() *cobra.Command {
	opts := &HubsOptions{}

	cmd := &cobra.Command{
		Use:   "hubs",
		Short: "List the public hub and your registered hubs",
		Long: `List the hubs a workflow can take its experiment from.

The public hub is always listed first, followed by the hubs registered
with the chaos portal for the configured user.

Examples:
  chaosflow hubs
  chaosflow hubs --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHubs(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format (table, json, plain)")

	return cmd
}

func runHubs(ctx context.Context, out, errOut io.Writer, opts *HubsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	env, closeEnv, err := openEnv(cfg, errOut, false)
	if err != nil {
		return err
	}
	defer closeEnv()

	rows, err := env.ListHubs(ctx)
	if err != nil {
		// The public hub is still worth showing.
		env.Logger.Warn("registered hubs unavailable", "error", err)
	}
	return app.PrintHubs(out, rows, app.OutputFormat(opts.Format))
}
