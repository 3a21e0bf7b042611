package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chazuruo/chaosflow/internal/cli"
)

// Version is set at build time using ldflags
var Version = "dev"

// Commit is set at build time using ldflags
var Commit = "unknown"

// Date is set at build time using ldflags
var Date = "unknown"

// BuiltBy is set at build time using ldflags
var BuiltBy = "unknown"

func main() {
	rootCmd := &cobra.Command{
		Use:   "chaosflow",
		Short: "Assemble chaos workflows from hub experiments",
		Long: `chaosflow is a terminal-first tool for building chaos workflows.

It lists the experiments published by the public chart hub and by the hubs
you registered with your chaos portal, and records your choice in a
workflow draft for the next steps to use.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)
	cli.SetFlagErrors(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(cli.NewInitCommand())
	rootCmd.AddCommand(cli.NewCreateCommand())
	rootCmd.AddCommand(cli.NewHubsCommand())
	rootCmd.AddCommand(cli.NewExperimentsCommand())
	rootCmd.AddCommand(cli.NewDraftCommand())
	rootCmd.AddCommand(cli.NewVersionCommand(Version, Commit, Date, BuiltBy))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := cli.ExitCode(err)
		if code != cli.ExitCanceled {
			fmt.Fprintln(os.Stderr, "Error:", err)
			if hint := cli.Hint(err); hint != "" {
				fmt.Fprintln(os.Stderr, "Hint:", hint)
			}
		}
		stop()
		os.Exit(code)
	}
}
