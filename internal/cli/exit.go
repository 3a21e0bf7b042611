package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

// Exit codes returned by chaosflow.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitUsage    = 2
	ExitCanceled = 13
)

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if cferrors.IsCanceled(err) || errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	// A broken config or draft is not a usage mistake even when it fails validation.
	if _, ok := cferrors.AsConfigError(err); ok {
		return ExitError
	}
	if _, ok := cferrors.AsDraftError(err); ok {
		return ExitError
	}
	if cferrors.IsInvalid(err) {
		return ExitUsage
	}
	return ExitError
}

// Hint returns a one-line suggestion for recovering from err, or "".
func Hint(err error) string {
	if ce, ok := cferrors.AsConfigError(err); ok {
		if cferrors.IsNotFound(ce) {
			return "run 'chaosflow init' to create a config"
		}
		if ce.Path != "" {
			return fmt.Sprintf("fix %s or rewrite it with 'chaosflow init --force'", ce.Path)
		}
		return "check the CHAOSFLOW_* environment variables"
	}

	if de, ok := cferrors.AsDraftError(err); ok {
		switch {
		case cferrors.IsInvalid(de):
			return "run 'chaosflow draft reset' to discard the unreadable draft"
		case cferrors.IsIO(de):
			return "check the [draft] path in your config"
		case cferrors.IsNetwork(de):
			return "check the [draft] redis_addr in your config"
		}
		return ""
	}

	if he, ok := cferrors.AsHubError(err); ok {
		switch {
		case cferrors.IsNotFound(he):
			return "run 'chaosflow hubs' to list the available hubs"
		case cferrors.IsNetwork(he):
			return "check the [portal] url and token in your config"
		case cferrors.IsIO(he):
			return "check the [public_hub] charts_source in your config"
		}
		return ""
	}

	if cferrors.IsInvalid(err) {
		return "run the command with --help to see its usage"
	}
	return ""
}

// flagError marks cobra flag parsing failures as usage errors.
func flagError(_ *cobra.Command, err error) error {
	return cferrors.Invalidf("%v", err)
}

// SetFlagErrors installs flagError on cmd; subcommands inherit it.
func SetFlagErrors(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(flagError)
}
