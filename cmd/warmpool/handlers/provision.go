package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hostbay/warmpool/internal/provision"
)

// Provision builds a complete tenant environment and prints how to reach it.
func Provision(ctx context.Context, configPath, tenantID string) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	ti, err := svc.orch.CreateTenantInstance(ctx, tenantID)
	if err != nil {
		var partial *provision.PartialProvisioningError
		if errors.As(err, &partial) && len(partial.CleanupErrs) > 0 {
			// the rollback itself failed: tell the operator what may be leaked
			fmt.Printf("Rollback left %d resource(s) behind, check the provider console:\n", len(partial.CleanupErrs))
			for _, cleanupErr := range partial.CleanupErrs {
				fmt.Printf("  - %v\n", cleanupErr)
			}
		}
		return err
	}

	fmt.Printf("Provisioned tenant %q\n", tenantID)
	fmt.Printf("  instance:    %s (id %d)\n", ti.InstanceName, ti.InstanceID)
	fmt.Printf("  address:     %s\n", ti.Address)
	fmt.Printf("  route:       %s\n", ti.Route.ServiceName)
	fmt.Printf("  listen port: %d\n", ti.Route.ListenPort)

	return nil
}
