package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/app"
	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/tui"
	"github.com/chazuruo/chaosflow/internal/wizard"
)

// CreateOptions contains the options for the create command.
type CreateOptions struct {
	Hub         string
	Experiment  string
	Name        string
	Description string
	Format      string

	nameSet bool
	descSet bool
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new chaos workflow",
		Long: `Start a new chaos workflow by naming it and choosing a hub and experiment.

The choice is saved in the workflow draft so that later steps can pick it up.
By default an interactive form is shown. With --no-tui, or when --experiment
is given, the draft is committed straight from the flags.

Examples:
  chaosflow create
  chaosflow create --no-tui --name drill --experiment generic/pod-delete
  chaosflow create --hub myhub --experiment kafka/kafka-broker-pod-failure`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.nameSet = cmd.Flags().Changed("name")
			opts.descSet = cmd.Flags().Changed("description")
			return runCreate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Hub, "hub", "", "hub name (default: the public hub)")
	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "experiment as chaos/experiment")
	cmd.Flags().StringVar(&opts.Name, "name", "", "workflow name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "workflow description")
	cmd.Flags().StringVar(&opts.Format, "format", "yaml", "output format for the committed draft (yaml, json)")

	return cmd
}

func runCreate(ctx context.Context, out, errOut io.Writer, opts *CreateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interactive := useTUI(cfg) && opts.Experiment == ""
	env, closeEnv, err := openEnv(cfg, errOut, interactive)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctrl, err := env.NewWizard(ctx)
	if err != nil {
		return err
	}

	if !interactive {
		return runCreateNonInteractive(ctx, out, env, ctrl, opts)
	}
	return runCreateInteractive(ctx, out, env, ctrl, opts)
}

func runCreateNonInteractive(ctx context.Context, out io.Writer, env *app.Env, ctrl *wizard.Controller, opts *CreateOptions) error {
	co := app.CreateOptions{Hub: opts.Hub, Experiment: opts.Experiment}
	if opts.nameSet {
		co.Name = &opts.Name
	}
	if opts.descSet {
		co.Description = &opts.Description
	}

	res, err := env.Create(ctx, ctrl, co)
	if err != nil {
		return err
	}
	if res.ArchivePath != "" {
		env.Logger.Info("draft archived", "path", res.ArchivePath)
	}
	return app.PrintDraft(out, res.Draft, app.OutputFormat(opts.Format))
}

func runCreateInteractive(ctx context.Context, out io.Writer, env *app.Env, ctrl *wizard.Controller, opts *CreateOptions) error {
	if opts.nameSet {
		ctrl.SetName(opts.Name)
	}
	if opts.descSet {
		ctrl.SetDescription(opts.Description)
	}
	var req *wizard.FetchRequest
	if opts.Hub != "" {
		var err error
		if req, err = ctrl.SelectHubByName(ctx, opts.Hub); err != nil {
			return err
		}
	}

	m := tui.NewCreateWorkflow(ctx, ctrl, env.Catalog, env.Config.TUI.ShowHelp).WithFetch(req)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return cferrors.Wrap(err, "tui")
	}
	return finishCreate(ctx, out, env, final)
}

// finishCreate archives and summarizes the draft committed by the TUI.
// Leaving the form without Next returns ErrCanceled.
func finishCreate(ctx context.Context, out io.Writer, env *app.Env, final tea.Model) error {
	fm, ok := final.(tui.CreateWorkflowModel)
	if !ok || fm.Cancelled || fm.Committed == nil {
		_, _ = fmt.Fprintln(out, "Cancelled.")
		env.Logger.Info("create workflow cancelled")
		return cferrors.ErrCanceled
	}

	res, err := env.Commit(ctx, *fm.Committed)
	if err != nil {
		return err
	}

	d := res.Draft
	_, _ = fmt.Fprintln(out, "✓ Workflow draft saved")
	_, _ = fmt.Fprintf(out, "  Name:       %s\n", d.Name)
	_, _ = fmt.Fprintf(out, "  Hub:        %s\n", d.CustomWorkflow.HubName)
	_, _ = fmt.Fprintf(out, "  Experiment: %s\n", d.CustomWorkflow.ExperimentName)
	_, _ = fmt.Fprintf(out, "  Engine:     %s\n", d.CustomWorkflow.YAMLLink)
	if res.ArchivePath != "" {
		_, _ = fmt.Fprintf(out, "  Archived:   %s\n", res.ArchivePath)
	}
	return nil
}
