package handlers

import (
	"context"
	"fmt"
)

// Stats prints the pool's current inventory counts.
//
// Counts are re-derived from instance labels on every call. The spare count
// includes instances that are still initializing, matching what the
// replenisher considers when deciding whether to launch.
func Stats(ctx context.Context, configPath string) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	stats, err := svc.pool.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pool stats: %w", err)
	}

	fmt.Printf("Pool %q\n", svc.cfg.Pool.Name)
	fmt.Printf("  total:        %d\n", stats.Total)
	fmt.Printf("  available:    %d\n", stats.Available)
	fmt.Printf("  assigned:     %d\n", stats.Assigned)
	fmt.Printf("  initializing: %d\n", stats.Initializing)
	fmt.Printf("  spare:        %d (target %d)\n", stats.Spare(), svc.cfg.Pool.TargetSpare)

	return nil
}
