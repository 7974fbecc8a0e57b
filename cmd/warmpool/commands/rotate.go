package commands

import (
	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Rotate returns the command that rotates workload credentials on an
// instance.
//
// Environment variables:
//
//	WARMPOOL_SECRETS_ACCESS_KEY:  object-store access key (required)
//	WARMPOOL_SECRETS_SECRET_KEY:  object-store secret key (required)
func Rotate() *cobra.Command {
	var (
		configPath   string
		instanceAddr string
	)

	cmd := &cobra.Command{
		Use:   "rotate <tenant-id>",
		Short: "Rotate workload credentials on a tenant's instance",
		Long: `Rotate the credentials a tenant's workload runs with: read the platform
and tenant key sets from the secret store, merge them (tenant keys win),
write the merged environment onto the instance over SSH, restart the
workload, and wait for its health endpoint to come back.

Examples:
  warmpool rotate tenant-a --address 10.0.1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Rotate(cmd.Context(), configPath, args[0], instanceAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")
	cmd.Flags().StringVar(&instanceAddr, "address", "", "Address of the tenant's instance (required)")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}
