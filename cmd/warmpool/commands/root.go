// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the warmpool CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warmpool",
		Short: "Manage a warm pool of compute instances and tenant routing",
	}

	// Pool commands
	cmd.AddCommand(Stats())
	cmd.AddCommand(Maintain())
	cmd.AddCommand(Assign())

	// Tenant lifecycle commands
	cmd.AddCommand(Provision())
	cmd.AddCommand(Deprovision())
	cmd.AddCommand(Rotate())
	cmd.AddCommand(Exec())

	cmd.AddCommand(Version())

	return cmd
}
