package commands

import (
	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Maintain returns the command that replenishes the warm pool.
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
func Maintain() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Launch instances until the pool reaches its spare target",
		Long: `Bring the pool back up to its configured spare-capacity target.

Counts unassigned instances (available plus still-initializing) and launches
the shortfall across the configured locations in round-robin order. Running
this when the pool is already at or above target is a no-op.

Examples:
  # Replenish the pool described in warmpool.yaml
  warmpool maintain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Maintain(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")

	return cmd
}
