package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hostbay/warmpool/cmd/warmpool/handlers"
)

// Exec returns the command that runs a script on a pool instance.
//
// Environment variables:
//
//	HCLOUD_TOKEN:                 Hetzner Cloud API token (required)
//	WARMPOOL_SECRETS_ACCESS_KEY:  object-store access key (required)
//	WARMPOOL_SECRETS_SECRET_KEY:  object-store secret key (required)
func Exec() *cobra.Command {
	var (
		configPath   string
		instanceAddr string
		scriptFile   string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a script on a pool instance and print its output",
		Long: `Run a script on a pool instance over SSH. The script is shipped to the
instance, started detached, and polled until it exits or the timeout passes;
its combined output is printed afterwards.

Examples:
  warmpool exec --address 10.0.1.5 --script ./patch.sh

  # Allow a slow script ten minutes
  warmpool exec --address 10.0.1.5 --script ./migrate.sh --timeout 10m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Exec(cmd.Context(), configPath, instanceAddr, scriptFile, timeout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: warmpool.yaml)")
	cmd.Flags().StringVar(&instanceAddr, "address", "", "Address of the instance (required)")
	cmd.Flags().StringVar(&scriptFile, "script", "", "Path to the script to run (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Execution timeout (default: WARMPOOL_TIMEOUT_REMOTE_SCRIPT)")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}
