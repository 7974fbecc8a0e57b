package commands

import (
	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Provision returns the command that builds a full tenant environment.
//
// Environment variables:
//
//	HCLOUD_TOKEN:                 Hetzner Cloud API token (required)
//	WARMPOOL_SECRETS_ACCESS_KEY:  object-store access key (required)
//	WARMPOOL_SECRETS_SECRET_KEY:  object-store secret key (required)
func Provision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "provision <tenant-id>",
		Short: "Provision a tenant: claim an instance and route traffic to it",
		Long: `Provision a complete tenant environment: claim a pool instance, create a
load-balancer route for the tenant, and register the instance as the route's
target.

If any step fails, the steps already completed are rolled back so no
half-built environment is left behind.

Examples:
  warmpool provision tenant-a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Provision(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")

	return cmd
}
