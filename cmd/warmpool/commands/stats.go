package commands

import (
	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Stats returns the command that prints the current pool inventory.
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
func Stats() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show pool inventory counts",
		Long: `Show how many instances the pool currently holds per status.

The counts are derived from instance labels on every call, so the output
always reflects what the cloud provider reports right now.

Examples:
  # Show stats for the pool in warmpool.yaml
  warmpool stats

  # Use a specific config file
  warmpool stats -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Stats(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")

	return cmd
}
