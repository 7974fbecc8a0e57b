package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	hcloudsdk "github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbay/warmpool/internal/config"
)

// fakeLB is an in-memory LoadBalancerAPI honoring the idempotency contract of
// the platform layer: duplicate adds are no-ops, deletes of absent things
// succeed.
type fakeLB struct {
	mu sync.Mutex
	lb *hcloudsdk.LoadBalancer

	EnsureLoadBalancerFunc func(ctx context.Context, name, location, lbType string, lbLabels map[string]string) (*hcloudsdk.LoadBalancer, error)
	AddServiceFunc         func(ctx context.Context, lb *hcloudsdk.LoadBalancer, opts hcloudsdk.LoadBalancerAddServiceOpts) error
}

func (f *fakeLB) EnsureLoadBalancer(ctx context.Context, name, location, lbType string, lbLabels map[string]string) (*hcloudsdk.LoadBalancer, error) {
	if f.EnsureLoadBalancerFunc != nil {
		return f.EnsureLoadBalancerFunc(ctx, name, location, lbType, lbLabels)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lb == nil {
		f.lb = &hcloudsdk.LoadBalancer{ID: 1, Name: name, Labels: lbLabels}
	}
	return f.lb, nil
}

func (f *fakeLB) GetLoadBalancer(_ context.Context, _ string) (*hcloudsdk.LoadBalancer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lb, nil
}

func (f *fakeLB) AddService(ctx context.Context, lb *hcloudsdk.LoadBalancer, opts hcloudsdk.LoadBalancerAddServiceOpts) error {
	if f.AddServiceFunc != nil {
		return f.AddServiceFunc(ctx, lb, opts)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range lb.Services {
		if s.ListenPort == *opts.ListenPort {
			return nil
		}
	}
	lb.Services = append(lb.Services, hcloudsdk.LoadBalancerService{
		ListenPort:      *opts.ListenPort,
		DestinationPort: *opts.DestinationPort,
	})
	return nil
}

func (f *fakeLB) DeleteService(_ context.Context, lb *hcloudsdk.LoadBalancer, listenPort int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range lb.Services {
		if s.ListenPort == listenPort {
			lb.Services = append(lb.Services[:i], lb.Services[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLB) AddServerTarget(_ context.Context, lb *hcloudsdk.LoadBalancer, serverID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range lb.Targets {
		if t.Server != nil && t.Server.Server.ID == serverID {
			return nil
		}
	}
	lb.Targets = append(lb.Targets, hcloudsdk.LoadBalancerTarget{
		Type:   hcloudsdk.LoadBalancerTargetTypeServer,
		Server: &hcloudsdk.LoadBalancerTargetServer{Server: &hcloudsdk.Server{ID: serverID}},
	})
	return nil
}

func (f *fakeLB) RemoveServerTarget(_ context.Context, lb *hcloudsdk.LoadBalancer, serverID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range lb.Targets {
		if t.Server != nil && t.Server.Server.ID == serverID {
			lb.Targets = append(lb.Targets[:i], lb.Targets[i+1:]...)
			return nil
		}
	}
	return nil
}

func testRouter(lb *fakeLB) *Router {
	cfg := config.RouterConfig{
		LoadBalancerType: "lb11",
		Location:         "fsn1",
		ListenPortMin:    10000,
		ListenPortMax:    10099,
		WorkloadPort:     8080,
		HealthCheckPath:  "/health",
	}
	return New(lb, cfg, "testpool", logr.Discard())
}

func TestListenPortFor_DeterministicAndBounded(t *testing.T) {
	t.Parallel()
	r := testRouter(&fakeLB{})

	first := r.ListenPortFor("tenant-a")
	for range 10 {
		assert.Equal(t, first, r.ListenPortFor("tenant-a"))
	}

	for _, key := range []string{"a", "b", "tenant-x", "0", "very-long-tenant-key-with-suffix"} {
		port := r.ListenPortFor(key)
		assert.GreaterOrEqual(t, port, 10000)
		assert.LessOrEqual(t, port, 10099)
	}
}

func TestCreateRoute_AddsHealthCheckedService(t *testing.T) {
	t.Parallel()
	lb := &fakeLB{}
	r := testRouter(lb)

	var gotOpts hcloudsdk.LoadBalancerAddServiceOpts
	lb.AddServiceFunc = func(_ context.Context, l *hcloudsdk.LoadBalancer, opts hcloudsdk.LoadBalancerAddServiceOpts) error {
		gotOpts = opts
		l.Services = append(l.Services, hcloudsdk.LoadBalancerService{ListenPort: *opts.ListenPort})
		return nil
	}

	route, err := r.CreateRoute(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", route.TenantKey)
	assert.Equal(t, r.ListenPortFor("tenant-a"), route.ListenPort)
	assert.Equal(t, "testpool-route-tenant-a", route.ServiceName)

	require.NotNil(t, gotOpts.HealthCheck)
	assert.Equal(t, "/health", *gotOpts.HealthCheck.HTTP.Path)
	assert.Equal(t, 8080, *gotOpts.DestinationPort)
}

func TestCreateRoute_EnsureLBFails(t *testing.T) {
	t.Parallel()
	lb := &fakeLB{}
	lb.EnsureLoadBalancerFunc = func(context.Context, string, string, string, map[string]string) (*hcloudsdk.LoadBalancer, error) {
		return nil, errors.New("lb quota exceeded")
	}
	r := testRouter(lb)

	_, err := r.CreateRoute(context.Background(), "tenant-a")
	require.Error(t, err)

	var rce *RouteCreateError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "tenant-a", rce.TenantKey)
}

func TestCreateDeleteRoute_LeavesNothingAndIsIdempotent(t *testing.T) {
	t.Parallel()
	lb := &fakeLB{}
	r := testRouter(lb)
	ctx := context.Background()

	route, err := r.CreateRoute(ctx, "tenant-a")
	require.NoError(t, err)

	exists, err := r.HasRoute(ctx, "tenant-a")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.DeleteRoute(ctx, route))

	exists, err = r.HasRoute(ctx, "tenant-a")
	require.NoError(t, err)
	assert.False(t, exists, "no services should remain for the tenant")
	assert.Empty(t, lb.lb.Services)

	// second delete must not fail
	require.NoError(t, r.DeleteRoute(ctx, route))
}

func TestCreateRoute_RetrySafe(t *testing.T) {
	t.Parallel()
	lb := &fakeLB{}
	r := testRouter(lb)
	ctx := context.Background()

	first, err := r.CreateRoute(ctx, "tenant-a")
	require.NoError(t, err)
	second, err := r.CreateRoute(ctx, "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, lb.lb.Services, 1, "retried creation must not allocate a second service")
}

func TestRegisterDeregisterTarget(t *testing.T) {
	t.Parallel()
	lb := &fakeLB{}
	r := testRouter(lb)
	ctx := context.Background()

	route, err := r.CreateRoute(ctx, "tenant-a")
	require.NoError(t, err)

	require.NoError(t, r.RegisterTarget(ctx, route, 42))
	assert.Len(t, lb.lb.Targets, 1)

	require.NoError(t, r.DeregisterTarget(ctx, route, 42))
	assert.Empty(t, lb.lb.Targets)

	// deregistering again is tolerated
	require.NoError(t, r.DeregisterTarget(ctx, route, 42))
}

func TestDeleteRoute_LoadBalancerGone(t *testing.T) {
	t.Parallel()
	lb := &fakeLB{} // no load balancer was ever created
	r := testRouter(lb)

	route := r.RouteFor("tenant-a")
	assert.NoError(t, r.DeleteRoute(context.Background(), route))
	assert.NoError(t, r.DeregisterTarget(context.Background(), route, 42))
}

func TestCreateRoute_EmptyTenantKey(t *testing.T) {
	t.Parallel()
	r := testRouter(&fakeLB{})
	_, err := r.CreateRoute(context.Background(), "")
	assert.Error(t, err)
}
