package handlers

import (
	"context"
	"fmt"

	"github.com/hostbay/warmpool/internal/provision"
)

// Deprovision tears a tenant environment down. Teardown is best-effort: the
// error lists what failed, but by the time it returns every step has been
// attempted.
func Deprovision(ctx context.Context, configPath, tenantID string, instanceID int64, instanceName string) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	err = svc.orch.DeleteTenantInstance(ctx, provision.TeardownParams{
		TenantID:     tenantID,
		InstanceID:   instanceID,
		InstanceName: instanceName,
	})
	if err != nil {
		return fmt.Errorf("teardown for tenant %s finished with errors: %w", tenantID, err)
	}

	fmt.Printf("Tore down tenant %q\n", tenantID)
	return nil
}
