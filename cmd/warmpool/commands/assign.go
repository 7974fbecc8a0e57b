package commands

import (
	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Assign returns the command that claims a pool instance for a tenant.
//
// Environment variables:
//
//	HCLOUD_TOKEN:                 Hetzner Cloud API token (required)
//	WARMPOOL_SECRETS_ACCESS_KEY:  object-store access key (required)
//	WARMPOOL_SECRETS_SECRET_KEY:  object-store secret key (required)
func Assign() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "assign <tenant-id>",
		Short: "Claim a warm instance for a tenant",
		Long: `Claim an available pool instance for a tenant and print its connection
details. Falls back to a cold start when the pool is empty, and kicks off
background replenishment either way.

This only claims the instance. Use 'warmpool provision' to also create the
tenant's load-balancer route.

Examples:
  warmpool assign tenant-a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Assign(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")

	return cmd
}
