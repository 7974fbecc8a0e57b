package pool

import (
	"context"

	"github.com/hostbay/warmpool/internal/util/labels"
)

// ListInstances returns a snapshot of every server labeled as part of this
// pool. There is no cache: each call re-queries the provider, so the snapshot
// is at worst as stale as the provider's own label propagation (seconds).
func (p *Pool) ListInstances(ctx context.Context) ([]Instance, error) {
	servers, err := p.compute.GetServersByLabel(ctx, labels.SelectorForPool(p.cfg.Name))
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, 0, len(servers))
	for _, s := range servers {
		instances = append(instances, instanceFromServer(s))
	}
	return instances, nil
}

// GetStats summarizes the pool and updates the exported gauges.
func (p *Pool) GetStats(ctx context.Context) (Stats, error) {
	instances, err := p.ListInstances(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := statsOf(instances)
	p.metrics.observe(stats)
	return stats, nil
}

func statsOf(instances []Instance) Stats {
	stats := Stats{Total: len(instances)}
	for _, inst := range instances {
		switch inst.Status {
		case StatusAvailable:
			stats.Available++
		case StatusAssigned:
			stats.Assigned++
		default:
			stats.Initializing++
		}
	}
	return stats
}
