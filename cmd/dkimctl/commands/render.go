package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dkimctl/cmd/dkimctl/handlers"
)

// Render returns the command that renders the managed files locally.
func Render() *cobra.Command {
	var configPath, outputDir string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the OpenDKIM configuration files",
		Long: `Render opendkim.conf, KeyTable, SigningTable and TrustedHosts without
touching any host.

Without --output the files are printed to stdout. With --output they are
written below the directory at their absolute host paths, for example
<dir>/etc/opendkim.conf.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Render(configPath, outputDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: dkimctl.yaml)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Write files below this directory instead of stdout")

	return cmd
}
