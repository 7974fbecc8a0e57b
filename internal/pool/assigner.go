package pool

import (
	"context"
	"fmt"

	"github.com/hostbay/warmpool/internal/util/labels"
	"github.com/hostbay/warmpool/internal/util/retry"
)

// AssignToTenant claims one available instance for the tenant and returns its
// address and bootstrap secret.
//
// If the pool is empty it falls back to a synchronous cold start: launch one
// instance and block until boot tooling flips it to available, bounded by the
// cold-start timeout. Cold-start failure is a PoolExhaustedError and is not
// retried here.
//
// The claim itself is a last-writer-wins label mutation. Two assignments
// racing on the same instance are possible and not corrected; the post-write
// re-read below makes the loser visible instead of silent.
func (p *Pool) AssignToTenant(ctx context.Context, tenantID string) (*Assignment, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id must not be empty")
	}

	instances, err := p.ListInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool instances: %w", err)
	}

	var chosen Instance
	found := false
	for _, inst := range instances {
		if inst.Status == StatusAvailable {
			chosen = inst
			found = true
			break
		}
	}

	if !found {
		p.log.Info("pool empty, falling back to synchronous cold start", "tenant", tenantID)
		p.metrics.coldStarts.Inc()
		chosen, err = p.coldStart(ctx)
		if err != nil {
			return nil, &PoolExhaustedError{Cause: err}
		}
	}

	secret, err := p.secrets.GetSecret(ctx, chosen.SecretRef)
	if err != nil {
		return nil, &SecretMissingError{
			InstanceName: chosen.Name,
			SecretRef:    chosen.SecretRef,
			Cause:        err,
		}
	}

	claimLabels := labels.NewLabelBuilder(p.cfg.Name).
		WithStatus(labels.StatusAssigned).
		WithTenant(tenantID).
		Build()

	updated, err := p.compute.UpdateServerLabels(ctx, chosen.ID, claimLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to claim instance %s: %w", chosen.Name, err)
	}

	claimed := instanceFromServer(updated)
	if claimed.Status != StatusAssigned || claimed.Tenant != tenantID {
		return nil, fmt.Errorf("instance %s not assigned to %s after claim (status=%s tenant=%s)",
			chosen.Name, tenantID, claimed.Status, claimed.Tenant)
	}

	p.log.Info("assigned instance", "name", claimed.Name, "id", claimed.ID, "tenant", tenantID)
	p.metrics.assignments.Inc()

	p.maintainInBackground()

	return &Assignment{
		InstanceID: claimed.ID,
		Name:       claimed.Name,
		Address:    claimed.Address(),
		Secret:     secret,
	}, nil
}

// coldStart launches one instance and waits until boot tooling reports it
// available. The wait is a fixed-interval poll bounded by ColdStartWait.
func (p *Pool) coldStart(ctx context.Context) (Instance, error) {
	server, err := p.launchInstance(ctx)
	if err != nil {
		return Instance{}, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.timeouts.ColdStartWait)
	defer cancel()

	interval := p.timeouts.PollInterval
	attempts := int(p.timeouts.ColdStartWait/interval) + 1

	var inst Instance
	err = retry.WithExponentialBackoff(waitCtx, func() error {
		current, getErr := p.compute.GetServer(waitCtx, server.ID)
		if getErr != nil {
			return getErr
		}
		if current == nil {
			return retry.Fatal(fmt.Errorf("instance %s disappeared while booting", server.Name))
		}
		inst = instanceFromServer(current)
		if inst.Status != StatusAvailable {
			return fmt.Errorf("instance %s still %s", inst.Name, inst.Status)
		}
		return nil
	},
		retry.WithMaxRetries(attempts),
		retry.WithInitialDelay(interval),
		retry.WithMultiplier(1.0),
	)
	if err != nil {
		return Instance{}, fmt.Errorf("instance %s did not become available within %s: %w",
			server.Name, p.timeouts.ColdStartWait, err)
	}

	return inst, nil
}

// Release returns an instance to the pool: tenant label cleared, status back
// to available. Used by provisioning rollback.
func (p *Pool) Release(ctx context.Context, instanceID int64) error {
	releaseLabels := labels.NewLabelBuilder(p.cfg.Name).
		WithStatus(labels.StatusAvailable).
		Build()

	if _, err := p.compute.UpdateServerLabels(ctx, instanceID, releaseLabels); err != nil {
		return fmt.Errorf("failed to release instance %s: %w", formatID(instanceID), err)
	}

	p.log.Info("released instance", "id", instanceID)
	return nil
}

// Terminate deletes the instance at the provider. Terminating an already
// absent instance succeeds.
func (p *Pool) Terminate(ctx context.Context, instanceID int64) error {
	if err := p.compute.DeleteServer(ctx, instanceID); err != nil {
		return fmt.Errorf("failed to terminate instance %s: %w", formatID(instanceID), err)
	}

	p.log.Info("terminated instance", "id", instanceID)
	return nil
}
