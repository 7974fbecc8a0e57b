package pool

import (
	"context"
	"fmt"

	hcloudsdk "github.com/hetznercloud/hcloud-go/v2/hcloud"

	platform "github.com/hostbay/warmpool/internal/platform/hcloud"
	"github.com/hostbay/warmpool/internal/util/labels"
)

// MaintainPool launches instances until the spare count (available +
// initializing) reaches targetSpare. Instances launch one at a time so a
// provider failure surfaces after at most one wasted call.
//
// There is deliberately no mutual exclusion: concurrent calls may briefly
// over-provision, which costs money but never blocks assignment. Excess
// spares are not reclaimed.
func (p *Pool) MaintainPool(ctx context.Context, targetSpare int) error {
	instances, err := p.ListInstances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pool instances: %w", err)
	}

	stats := statsOf(instances)
	p.metrics.observe(stats)

	shortfall := targetSpare - stats.Spare()
	if shortfall <= 0 {
		return nil
	}

	p.log.Info("replenishing pool", "spare", stats.Spare(), "target", targetSpare, "launching", shortfall)

	for i := 0; i < shortfall; i++ {
		if _, err := p.launchInstance(ctx); err != nil {
			return fmt.Errorf("failed to launch spare instance (%d of %d): %w", i+1, shortfall, err)
		}
	}
	return nil
}

// maintainInBackground runs MaintainPool detached from the caller's request.
// Errors are logged, never surfaced: replenishment failure must not fail an
// assignment that already succeeded.
func (p *Pool) maintainInBackground() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeouts.ColdStartWait)
		defer cancel()

		if err := p.MaintainPool(ctx, p.cfg.TargetSpare); err != nil {
			p.log.Error(err, "background pool replenishment failed")
		}
	}()
}

// launchInstance launches exactly one instance, trying configured locations
// in round-robin order from a rotating offset. Per-location failures are
// collected; only when every location fails does the aggregate surface.
func (p *Pool) launchInstance(ctx context.Context) (*hcloudsdk.Server, error) {
	offset := int(p.launchOffset.Add(1) - 1)

	launchLabels := labels.NewLabelBuilder(p.cfg.Name).
		WithStatus(labels.StatusInitializing).
		Build()

	var attempts []LaunchAttempt
	for i := range p.cfg.Locations {
		location := p.cfg.Locations[(offset+i)%len(p.cfg.Locations)]

		server, err := p.compute.CreateServer(ctx, platform.ServerCreateOpts{
			Name:       p.newInstanceName(),
			ServerType: p.cfg.ServerType,
			Image:      p.cfg.Image,
			Location:   location,
			SSHKeys:    p.cfg.SSHKeys,
			Labels:     launchLabels,
		})
		if err != nil {
			p.log.Error(err, "launch failed, trying next location", "location", location)
			p.metrics.launchFailures.Inc()
			attempts = append(attempts, LaunchAttempt{Location: location, Err: err})
			continue
		}

		p.log.Info("launched instance", "name", server.Name, "id", server.ID, "location", location)
		p.metrics.launches.Inc()
		return server, nil
	}

	return nil, &LaunchError{Attempts: attempts}
}
