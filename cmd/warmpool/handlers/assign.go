package handlers

import (
	"context"
	"fmt"

	"github.com/hostbay/warmpool/internal/pool"
)

// Assign claims a pool instance for the tenant and prints its connection
// details. The bootstrap secret goes to stdout with everything else; callers
// piping the output are expected to treat it accordingly.
func Assign(ctx context.Context, configPath, tenantID string) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	assignment, err := svc.pool.AssignToTenant(ctx, tenantID)
	if err != nil {
		if pool.IsPoolExhausted(err) {
			return fmt.Errorf("no instance available for tenant %s and cold start failed: %w", tenantID, err)
		}
		return fmt.Errorf("failed to assign instance to tenant %s: %w", tenantID, err)
	}

	fmt.Printf("Assigned instance to tenant %q\n", tenantID)
	fmt.Printf("  instance: %s (id %d)\n", assignment.Name, assignment.InstanceID)
	fmt.Printf("  address:  %s\n", assignment.Address)
	fmt.Printf("  secret:   %s\n", assignment.Secret)

	return nil
}
