package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/app"
)

// NewDraftCommand creates the draft command and its subcommands.
func NewDraftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or discard the workflow draft",
	}
	cmd.AddCommand(newDraftShowCommand())
	cmd.AddCommand(newDraftResetCommand())
	return cmd
}

func newDraftShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current workflow draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftShow(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json)")
	return cmd
}

func newDraftResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the current workflow draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftReset(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runDraftShow(ctx context.Context, out, errOut io.Writer, format string) error {
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

	d, err := env.Store.Get(ctx)
	if err != nil {
		return err
	}
	return app.PrintDraft(out, d, app.OutputFormat(format))
}

func runDraftReset(ctx context.Context, out, errOut io.Writer) error {
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

	if err := env.Store.Reset(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "Draft discarded.")
	return err
}
