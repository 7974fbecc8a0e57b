package handlers

import (
	"context"
	"fmt"
)

// Maintain replenishes the pool up to its configured spare target and prints
// the resulting inventory.
func Maintain(ctx context.Context, configPath string) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	if err := svc.pool.MaintainPool(ctx, svc.cfg.Pool.TargetSpare); err != nil {
		return fmt.Errorf("failed to replenish pool: %w", err)
	}

	stats, err := svc.pool.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pool stats: %w", err)
	}
	fmt.Printf("Pool %q at %d spare (target %d)\n", svc.cfg.Pool.Name, stats.Spare(), svc.cfg.Pool.TargetSpare)

	return nil
}
