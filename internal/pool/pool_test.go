package pool

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"testing"

	"github.com/go-logr/logr"
	hcloudsdk "github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/hostbay/warmpool/internal/config"
	platform "github.com/hostbay/warmpool/internal/platform/hcloud"
	"github.com/hostbay/warmpool/internal/util/labels"
)

// fakeCompute is an in-memory ComputeAPI. Individual methods can be
// overridden via the Func fields; the defaults maintain a label-addressable
// server map the way the provider would.
type fakeCompute struct {
	mu      sync.Mutex
	nextID  int64
	servers map[int64]*hcloudsdk.Server

	launches int

	CreateServerFunc       func(ctx context.Context, opts platform.ServerCreateOpts) (*hcloudsdk.Server, error)
	GetServerFunc          func(ctx context.Context, id int64) (*hcloudsdk.Server, error)
	UpdateServerLabelsFunc func(ctx context.Context, id int64, labelsMap map[string]string) (*hcloudsdk.Server, error)
}

func newFakeCompute() *fakeCompute {
	return &fakeCompute{servers: make(map[int64]*hcloudsdk.Server)}
}

func (f *fakeCompute) addServer(name, status, tenant string) *hcloudsdk.Server {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := &hcloudsdk.Server{
		ID:      f.nextID,
		Name:    name,
		Created: time.Now(),
		Labels: map[string]string{
			labels.KeyPool:   "testpool",
			labels.KeyStatus: status,
		},
	}
	if tenant != "" {
		s.Labels[labels.KeyTenant] = tenant
	}
	s.PublicNet.IPv4.IP = net.ParseIP(fmt.Sprintf("192.0.2.%d", f.nextID))
	f.servers[s.ID] = s
	return s
}

func (f *fakeCompute) CreateServer(ctx context.Context, opts platform.ServerCreateOpts) (*hcloudsdk.Server, error) {
	if f.CreateServerFunc != nil {
		return f.CreateServerFunc(ctx, opts)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.launches++
	s := &hcloudsdk.Server{
		ID:      f.nextID,
		Name:    opts.Name,
		Created: time.Now(),
		Labels:  opts.Labels,
	}
	s.PublicNet.IPv4.IP = net.ParseIP(fmt.Sprintf("192.0.2.%d", f.nextID))
	f.servers[s.ID] = s
	return s, nil
}

func (f *fakeCompute) DeleteServer(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.servers, id)
	return nil
}

func (f *fakeCompute) GetServer(ctx context.Context, id int64) (*hcloudsdk.Server, error) {
	if f.GetServerFunc != nil {
		return f.GetServerFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.servers[id], nil
}

func (f *fakeCompute) GetServersByLabel(_ context.Context, _ string) ([]*hcloudsdk.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*hcloudsdk.Server, 0, len(f.servers))
	// stable FIFO-by-id ordering, mirroring list order from the provider
	for id := int64(1); id <= f.nextID; id++ {
		if s, ok := f.servers[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCompute) UpdateServerLabels(ctx context.Context, id int64, labelsMap map[string]string) (*hcloudsdk.Server, error) {
	if f.UpdateServerLabelsFunc != nil {
		return f.UpdateServerLabelsFunc(ctx, id, labelsMap)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servers[id]
	if !ok {
		return nil, fmt.Errorf("server not found: %d", id)
	}
	s.Labels = labelsMap
	return s, nil
}

func (f *fakeCompute) launchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.launches
}

// fakeSecrets serves secrets from a map.
type fakeSecrets struct {
	mu      sync.Mutex
	secrets map[string][]byte
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{secrets: make(map[string][]byte)}
}

func (f *fakeSecrets) put(key string, blob []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[key] = blob
}

func (f *fakeSecrets) GetSecret(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.secrets[key]
	if !ok {
		return nil, fmt.Errorf("secret not found: %s", key)
	}
	return blob, nil
}

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		ColdStartWait:     300 * time.Millisecond,
		HealthWait:        100 * time.Millisecond,
		RemoteScript:      time.Second,
		Delete:            time.Second,
		PollInterval:      10 * time.Millisecond,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
	}
}

func testPool(compute ComputeAPI, secrets SecretReader) *Pool {
	cfg := config.PoolConfig{
		Name:        "testpool",
		TargetSpare: 2,
		ServerType:  "cx22",
		Image:       "debian-12",
		Locations:   []string{"fsn1", "nbg1"},
	}
	return New(compute, secrets, cfg, testTimeouts(), logr.Discard())
}

func TestListInstances_DerivesStatusFromLabels(t *testing.T) {
	t.Parallel()
	compute := newFakeCompute()
	compute.addServer("testpool-a", labels.StatusAvailable, "")
	compute.addServer("testpool-b", labels.StatusAssigned, "tenant-1")
	compute.addServer("testpool-c", labels.StatusInitializing, "")
	compute.addServer("testpool-d", "bogus-status", "")
	compute.addServer("testpool-e", "", "")

	p := testPool(compute, newFakeSecrets())
	instances, err := p.ListInstances(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(instances) != 5 {
		t.Fatalf("expected 5 instances, got %d", len(instances))
	}

	byName := map[string]Instance{}
	for _, inst := range instances {
		byName[inst.Name] = inst
	}

	if byName["testpool-a"].Status != StatusAvailable {
		t.Errorf("a: expected available, got %s", byName["testpool-a"].Status)
	}
	if byName["testpool-b"].Status != StatusAssigned || byName["testpool-b"].Tenant != "tenant-1" {
		t.Errorf("b: expected assigned to tenant-1, got %+v", byName["testpool-b"])
	}
	// fail-safe: unknown or absent status labels are never available
	for _, name := range []string{"testpool-c", "testpool-d", "testpool-e"} {
		if byName[name].Status != StatusInitializing {
			t.Errorf("%s: expected initializing, got %s", name, byName[name].Status)
		}
	}
}

func TestListInstances_SecretRefIsDeterministic(t *testing.T) {
	t.Parallel()
	compute := newFakeCompute()
	compute.addServer("testpool-a", labels.StatusAvailable, "")

	p := testPool(compute, newFakeSecrets())
	instances, err := p.ListInstances(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := instances[0].SecretRef; got != "pool/instance/testpool-a/token" {
		t.Errorf("unexpected secret ref: %q", got)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()
	compute := newFakeCompute()
	compute.addServer("a", labels.StatusAvailable, "")
	compute.addServer("b", labels.StatusAvailable, "")
	compute.addServer("c", labels.StatusAssigned, "t1")
	compute.addServer("d", labels.StatusInitializing, "")

	p := testPool(compute, newFakeSecrets())
	stats, err := p.GetStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Stats{Total: 4, Available: 2, Assigned: 1, Initializing: 1}
	if stats != want {
		t.Errorf("got %+v, want %+v", stats, want)
	}
	if stats.Spare() != 3 {
		t.Errorf("expected spare 3, got %d", stats.Spare())
	}
}

func TestInstanceAddress_PrefersPrivateIP(t *testing.T) {
	t.Parallel()
	inst := Instance{PrivateIP: "10.0.0.2", PublicIP: "192.0.2.1"}
	if inst.Address() != "10.0.0.2" {
		t.Errorf("expected private IP, got %s", inst.Address())
	}
	inst.PrivateIP = ""
	if inst.Address() != "192.0.2.1" {
		t.Errorf("expected public IP fallback, got %s", inst.Address())
	}
}
