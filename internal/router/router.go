// Package router manages per-tenant routing on the shared load balancer.
//
// Each tenant gets one health-checked service on the shared load balancer,
// listening on a port derived deterministically from the tenant key, plus a
// server target for the tenant's assigned instance. Deriving the port from a
// stable hash makes route creation retry-safe without a central port counter
// or database.
package router

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/go-logr/logr"
	hcloudsdk "github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/hostbay/warmpool/internal/config"
	platform "github.com/hostbay/warmpool/internal/platform/hcloud"
	"github.com/hostbay/warmpool/internal/util/labels"
	"github.com/hostbay/warmpool/internal/util/naming"
)

const healthCheckInterval = 15 * time.Second

// Route identifies a tenant's routing on the shared load balancer.
type Route struct {
	TenantKey   string
	ServiceName string
	ListenPort  int
}

// Router creates and destroys tenant routes.
type Router struct {
	lb       platform.LoadBalancerAPI
	cfg      config.RouterConfig
	poolName string
	log      logr.Logger
}

// New creates a router for the given pool's shared load balancer.
func New(lb platform.LoadBalancerAPI, cfg config.RouterConfig, poolName string, log logr.Logger) *Router {
	return &Router{
		lb:       lb,
		cfg:      cfg,
		poolName: poolName,
		log:      log.WithName("router"),
	}
}

// RouteCreateError aggregates the API failures behind one route creation.
type RouteCreateError struct {
	TenantKey string
	Cause     error
}

func (e *RouteCreateError) Error() string {
	return fmt.Sprintf("failed to create route for tenant %s: %v", e.TenantKey, e.Cause)
}

func (e *RouteCreateError) Unwrap() error {
	return e.Cause
}

// ListenPortFor maps a tenant key into the configured listen-port range via
// a stable FNV-1a hash. Deterministic: the same key always yields the same
// port, so a retried creation converges instead of allocating twice.
func (r *Router) ListenPortFor(tenantKey string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantKey))
	span := uint32(r.cfg.ListenPortMax - r.cfg.ListenPortMin + 1)
	return r.cfg.ListenPortMin + int(h.Sum32()%span)
}

// RouteFor returns the deterministic route for a tenant key without touching
// the provider. Teardown paths use it when no route was persisted.
func (r *Router) RouteFor(tenantKey string) Route {
	return Route{
		TenantKey:   tenantKey,
		ServiceName: naming.RouteService(r.poolName, tenantKey),
		ListenPort:  r.ListenPortFor(tenantKey),
	}
}

// CreateRoute ensures the shared load balancer exists and adds the tenant's
// health-checked service to it.
func (r *Router) CreateRoute(ctx context.Context, tenantKey string) (Route, error) {
	if tenantKey == "" {
		return Route{}, &RouteCreateError{TenantKey: tenantKey, Cause: fmt.Errorf("tenant key must not be empty")}
	}

	route := r.RouteFor(tenantKey)

	lb, err := r.ensureLoadBalancer(ctx)
	if err != nil {
		return Route{}, &RouteCreateError{TenantKey: tenantKey, Cause: err}
	}

	opts := hcloudsdk.LoadBalancerAddServiceOpts{
		Protocol:        hcloudsdk.LoadBalancerServiceProtocolTCP,
		ListenPort:      hcloudsdk.Ptr(route.ListenPort),
		DestinationPort: hcloudsdk.Ptr(r.cfg.WorkloadPort),
		HealthCheck: &hcloudsdk.LoadBalancerAddServiceOptsHealthCheck{
			Protocol: hcloudsdk.LoadBalancerServiceProtocolHTTP,
			Port:     hcloudsdk.Ptr(r.cfg.WorkloadPort),
			Interval: hcloudsdk.Ptr(healthCheckInterval),
			Timeout:  hcloudsdk.Ptr(10 * time.Second),
			Retries:  hcloudsdk.Ptr(3),
			HTTP: &hcloudsdk.LoadBalancerAddServiceOptsHealthCheckHTTP{
				Path: hcloudsdk.Ptr(r.cfg.HealthCheckPath),
			},
		},
	}

	if err := r.lb.AddService(ctx, lb, opts); err != nil {
		return Route{}, &RouteCreateError{TenantKey: tenantKey, Cause: err}
	}

	r.log.Info("created route", "tenant", tenantKey, "listenPort", route.ListenPort)
	return route, nil
}

// RegisterTarget points the tenant's route at an instance.
func (r *Router) RegisterTarget(ctx context.Context, route Route, serverID int64) error {
	lb, err := r.getLoadBalancer(ctx)
	if err != nil {
		return err
	}
	if lb == nil {
		return fmt.Errorf("load balancer %s not found", naming.LoadBalancer(r.poolName))
	}

	if err := r.lb.AddServerTarget(ctx, lb, serverID); err != nil {
		return fmt.Errorf("failed to register target for tenant %s: %w", route.TenantKey, err)
	}

	r.log.Info("registered target", "tenant", route.TenantKey, "serverID", serverID)
	return nil
}

// DeregisterTarget detaches an instance from the load balancer. Absence is
// tolerated: teardown may race with instance termination.
func (r *Router) DeregisterTarget(ctx context.Context, route Route, serverID int64) error {
	lb, err := r.getLoadBalancer(ctx)
	if err != nil {
		return err
	}
	if lb == nil {
		r.log.Info("load balancer already gone, skipping target deregistration", "tenant", route.TenantKey)
		return nil
	}

	if err := r.lb.RemoveServerTarget(ctx, lb, serverID); err != nil {
		if platform.IsNotFound(err) {
			r.log.Info("target already deregistered", "tenant", route.TenantKey, "serverID", serverID)
			return nil
		}
		return fmt.Errorf("failed to deregister target for tenant %s: %w", route.TenantKey, err)
	}
	return nil
}

// DeleteRoute removes the tenant's service, stopping new traffic. It is
// idempotent: a route that is already gone, in whole or in part, is success.
func (r *Router) DeleteRoute(ctx context.Context, route Route) error {
	lb, err := r.getLoadBalancer(ctx)
	if err != nil {
		return err
	}
	if lb == nil {
		r.log.Info("load balancer already gone, nothing to delete", "tenant", route.TenantKey)
		return nil
	}

	if err := r.lb.DeleteService(ctx, lb, route.ListenPort); err != nil {
		if platform.IsNotFound(err) {
			r.log.Info("route already deleted", "tenant", route.TenantKey)
			return nil
		}
		return fmt.Errorf("failed to delete route for tenant %s: %w", route.TenantKey, err)
	}

	r.log.Info("deleted route", "tenant", route.TenantKey, "listenPort", route.ListenPort)
	return nil
}

// HasRoute reports whether the tenant's service currently exists.
func (r *Router) HasRoute(ctx context.Context, tenantKey string) (bool, error) {
	lb, err := r.getLoadBalancer(ctx)
	if err != nil {
		return false, err
	}
	if lb == nil {
		return false, nil
	}

	port := r.ListenPortFor(tenantKey)
	for _, s := range lb.Services {
		if s.ListenPort == port {
			return true, nil
		}
	}
	return false, nil
}

func (r *Router) ensureLoadBalancer(ctx context.Context) (*hcloudsdk.LoadBalancer, error) {
	lbLabels := labels.NewLabelBuilder(r.poolName).Build()
	return r.lb.EnsureLoadBalancer(ctx, naming.LoadBalancer(r.poolName), r.cfg.Location, r.cfg.LoadBalancerType, lbLabels)
}

func (r *Router) getLoadBalancer(ctx context.Context) (*hcloudsdk.LoadBalancer, error) {
	lb, err := r.lb.GetLoadBalancer(ctx, naming.LoadBalancer(r.poolName))
	if err != nil {
		if platform.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up load balancer: %w", err)
	}
	return lb, nil
}
