package handlers

import (
	"context"
	"fmt"

	"github.com/hostbay/warmpool/internal/remotecmd"
)

// Rotate pushes merged platform and tenant credentials onto the tenant's
// instance and waits for the workload to come back healthy.
func Rotate(ctx context.Context, configPath, tenantID, instanceAddr string) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	if err := svc.orch.RotateTenantCredentials(ctx, tenantID, instanceAddr); err != nil {
		if remotecmd.IsTimeout(err) {
			return fmt.Errorf("workload on %s did not report healthy after rotation: %w", instanceAddr, err)
		}
		return err
	}

	fmt.Printf("Rotated credentials for tenant %q on %s\n", tenantID, instanceAddr)
	return nil
}
