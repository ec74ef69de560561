package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dkimctl/cmd/dkimctl/handlers"
)

// Facts returns the command that prints the detected host facts.
func Facts() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Show the detected distribution of the host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Facts(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: dkimctl.yaml)")

	return cmd
}
