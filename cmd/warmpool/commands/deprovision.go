package commands

import (
	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Deprovision returns the command that tears a tenant environment down.
//
// Environment variables:
//
//	HCLOUD_TOKEN:                 Hetzner Cloud API token (required)
//	WARMPOOL_SECRETS_ACCESS_KEY:  object-store access key (required)
//	WARMPOOL_SECRETS_SECRET_KEY:  object-store secret key (required)
func Deprovision() *cobra.Command {
	var (
		configPath   string
		instanceID   int64
		instanceName string
	)

	cmd := &cobra.Command{
		Use:   "deprovision <tenant-id>",
		Short: "Tear down a tenant's route, instance, and bootstrap secret",
		Long: `Tear a tenant environment down: deregister the instance from the tenant's
route, delete the route, terminate the instance, and delete its bootstrap
secret.

Every step runs even if an earlier one fails; failures are reported at the
end. Steps whose identifiers are not supplied are skipped.

Examples:
  warmpool deprovision tenant-a --instance-id 42 --instance-name pool-abc123

  # Route-only teardown when the instance is already gone
  warmpool deprovision tenant-a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Deprovision(cmd.Context(), configPath, args[0], instanceID, instanceName)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")
	cmd.Flags().Int64Var(&instanceID, "instance-id", 0, "Provider ID of the tenant's instance")
	cmd.Flags().StringVar(&instanceName, "instance-name", "", "Name of the tenant's instance")

	return cmd
}
