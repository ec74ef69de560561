// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dkimctl/internal/logging"
)

// Root returns the root command for the dkimctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dkimctl",
		Short:         "Provision OpenDKIM signing on a mail host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeatable)")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().Bool("log-timestamps", false, "Prefix log entries with the time")

	cmd.AddCommand(Apply())
	cmd.AddCommand(Render())
	cmd.AddCommand(Facts())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// logOptions reads the persistent logging flags. Missing flags, as when a
// subcommand runs without its root, leave the defaults.
func logOptions(cmd *cobra.Command) logging.Options {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	json, _ := cmd.Flags().GetBool("log-json")
	timestamps, _ := cmd.Flags().GetBool("log-timestamps")
	return logging.Options{Verbosity: verbosity, JSON: json, Timestamps: timestamps}
}
