package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/app"
)

// ExperimentsOptions contains the options for the experiments command.
type ExperimentsOptions struct {
	Hub    string
	Format string
}

// NewExperimentsCommand creates the experiments command.
func NewExperimentsCommand() *cobra.Command {
	opts := &ExperimentsOptions{}

	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List the experiments a hub offers",
		Long: `List every experiment published by a hub, one per chart entry,
with the engine manifest URL a workflow would use.

Examples:
  chaosflow experiments
  chaosflow experiments --hub myhub --format plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiments(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Hub, "hub", "", "hub name (default: the public hub)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format (table, json, plain)")

	return cmd
}

func runExperiments(ctx context.Context, out, errOut io.Writer, opts *ExperimentsOptions) error {
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

	rows, err := env.ListExperiments(ctx, opts.Hub)
	if err != nil {
		return err
	}
	return app.PrintExperiments(out, rows, app.OutputFormat(opts.Format))
}
