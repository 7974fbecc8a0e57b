package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/hostbay/warmpool/internal/util/retry"
)

// EnsureLoadBalancer ensures the shared load balancer exists.
// Load balancer creation can take several minutes on the provider side.
func (c *RealClient) EnsureLoadBalancer(ctx context.Context, name, location, lbType string, lbLabels map[string]string) (*hcloud.LoadBalancer, error) {
	lb, _, err := c.client.LoadBalancer.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get load balancer: %w", err)
	}
	if lb != nil {
		return lb, nil
	}

	lbTypeObj, _, err := c.client.LoadBalancerType.Get(ctx, lbType)
	if err != nil {
		return nil, fmt.Errorf("failed to get load balancer type: %w", err)
	}
	locObj, _, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	res, _, err := c.client.LoadBalancer.Create(ctx, hcloud.LoadBalancerCreateOpts{
		Name:             name,
		LoadBalancerType: lbTypeObj,
		Location:         locObj,
		Labels:           lbLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create load balancer: %w", err)
	}
	if err := c.client.Action.WaitFor(ctx, res.Action); err != nil {
		return nil, fmt.Errorf("failed to wait for load balancer creation: %w", err)
	}

	return res.LoadBalancer, nil
}

// GetLoadBalancer returns the load balancer with the given name, or nil.
func (c *RealClient) GetLoadBalancer(ctx context.Context, name string) (*hcloud.LoadBalancer, error) {
	lb, _, err := c.client.LoadBalancer.Get(ctx, name)
	return lb, err
}

// AddService adds a service to the load balancer. Adding a service whose
// listen port already exists is a no-op, which makes route creation
// retry-safe.
func (c *RealClient) AddService(ctx context.Context, lb *hcloud.LoadBalancer, opts hcloud.LoadBalancerAddServiceOpts) error {
	if opts.ListenPort == nil {
		return fmt.Errorf("listen port is nil")
	}

	for _, s := range lb.Services {
		if s.ListenPort == *opts.ListenPort {
			return nil
		}
	}

	action, _, err := c.client.LoadBalancer.AddService(ctx, lb, opts)
	if err != nil {
		return fmt.Errorf("failed to add service on port %d: %w", *opts.ListenPort, err)
	}
	return c.client.Action.WaitFor(ctx, action)
}

// DeleteService removes the service listening on the given port. A service
// that is already absent is not an error.
func (c *RealClient) DeleteService(ctx context.Context, lb *hcloud.LoadBalancer, listenPort int) error {
	found := false
	for _, s := range lb.Services {
		if s.ListenPort == listenPort {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return retry.WithExponentialBackoff(ctx, func() error {
		action, _, err := c.client.LoadBalancer.DeleteService(ctx, lb, listenPort)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(err)
		}
		return c.client.Action.WaitFor(ctx, action)
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
}

// AddServerTarget registers a server as a target, using its private IP when
// the load balancer and server share a network.
func (c *RealClient) AddServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, serverID int64) error {
	for _, target := range lb.Targets {
		if target.Type == hcloud.LoadBalancerTargetTypeServer &&
			target.Server != nil && target.Server.Server.ID == serverID {
			return nil
		}
	}

	server, _, err := c.client.Server.GetByID(ctx, serverID)
	if err != nil {
		return fmt.Errorf("failed to get server %d: %w", serverID, err)
	}
	if server == nil {
		return fmt.Errorf("server not found: %d", serverID)
	}

	usePrivateIP := len(server.PrivateNet) > 0 && len(lb.PrivateNet) > 0
	action, _, err := c.client.LoadBalancer.AddServerTarget(ctx, lb, hcloud.LoadBalancerAddServerTargetOpts{
		Server:       server,
		UsePrivateIP: hcloud.Ptr(usePrivateIP),
	})
	if err != nil {
		return fmt.Errorf("failed to add server target %d: %w", serverID, err)
	}
	return c.client.Action.WaitFor(ctx, action)
}

// RemoveServerTarget deregisters a server target. An already absent target is
// not an error.
func (c *RealClient) RemoveServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, serverID int64) error {
	registered := false
	for _, target := range lb.Targets {
		if target.Type == hcloud.LoadBalancerTargetTypeServer &&
			target.Server != nil && target.Server.Server.ID == serverID {
			registered = true
			break
		}
	}
	if !registered {
		return nil
	}

	server, _, err := c.client.Server.GetByID(ctx, serverID)
	if err != nil {
		return fmt.Errorf("failed to get server %d: %w", serverID, err)
	}
	if server == nil {
		// server terminated first; the provider drops its targets with it
		return nil
	}

	action, _, err := c.client.LoadBalancer.RemoveServerTarget(ctx, lb, server)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to remove server target %d: %w", serverID, err)
	}
	return c.client.Action.WaitFor(ctx, action)
}
