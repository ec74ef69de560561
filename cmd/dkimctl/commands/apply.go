package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dkimctl/cmd/dkimctl/handlers"
)

// Apply returns the command that converges the host.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect dkimctl.yaml)
//	--check: Report what would change without changing anything
//	--metrics-file: Write run metrics in the node_exporter textfile format
//
// Environment variables:
//
//	CLOUDFLARE_API_TOKEN: Cloudflare token when dns.cloudflare is enabled
//	AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY: credentials for backup.s3
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Install and configure OpenDKIM",
		Long: `Install and configure OpenDKIM on the configured host.

Packages are installed for the detected distribution, the configuration
files are rendered, the signing key is generated if it does not exist yet
and the service is started. OpenDKIM is restarted once at the end of the
run when any managed file or the key changed.

If no config file is specified, it looks for dkimctl.yaml in the current
directory and its parents.

Examples:
  # Converge the host described in dkimctl.yaml
  dkimctl apply

  # Show what would change
  dkimctl apply --check

  # Export run metrics for node_exporter
  dkimctl apply --metrics-file /var/lib/node_exporter/textfile/dkimctl.prom`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Log = logOptions(cmd)
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: dkimctl.yaml)")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Report changes without applying them")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write run metrics to this file")

	return cmd
}
