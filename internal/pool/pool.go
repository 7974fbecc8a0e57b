// Package pool implements the warm instance pool: inventory derived from
// provider labels, background replenishment, and tenant assignment with a
// synchronous cold-start fallback.
//
// The pool keeps no state of its own. Every query re-reads server labels from
// the provider, accepting API latency as the cost of correctness: a status
// that is always re-derived cannot go stale in a local cache. Label mutation
// is last-writer-wins; the rare double-assignment race is accepted and
// operationally visible rather than silently corrected.
package pool

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	hcloudsdk "github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/hostbay/warmpool/internal/config"
	platform "github.com/hostbay/warmpool/internal/platform/hcloud"
	"github.com/hostbay/warmpool/internal/util/labels"
	"github.com/hostbay/warmpool/internal/util/naming"
)

// Status is an instance lifecycle status derived from provider labels.
type Status string

const (
	StatusInitializing Status = labels.StatusInitializing
	StatusAvailable    Status = labels.StatusAvailable
	StatusAssigned     Status = labels.StatusAssigned
)

// Instance is a point-in-time view of one pool server. It is a snapshot, not
// a handle: the authoritative state lives in the provider's labels.
type Instance struct {
	ID         int64
	Name       string
	Status     Status
	Tenant     string
	PrivateIP  string
	PublicIP   string
	SecretRef  string
	LaunchedAt time.Time
}

// Address returns the address callers should reach the instance on,
// preferring the private network.
func (i Instance) Address() string {
	if i.PrivateIP != "" {
		return i.PrivateIP
	}
	return i.PublicIP
}

// Assignment is the result of claiming an instance for a tenant.
type Assignment struct {
	InstanceID int64
	Name       string
	Address    string
	Secret     []byte
}

// Stats summarizes the pool at one point in time.
type Stats struct {
	Total        int
	Available    int
	Assigned     int
	Initializing int
}

// Spare is the number of instances not assigned to any tenant.
func (s Stats) Spare() int {
	return s.Available + s.Initializing
}

// SecretReader reads bootstrap secrets by deterministic key.
type SecretReader interface {
	GetSecret(ctx context.Context, key string) ([]byte, error)
}

// Pool is the warm pool service. Construct one per process and inject it;
// there is no package-level instance.
type Pool struct {
	compute  ComputeAPI
	secrets  SecretReader
	cfg      config.PoolConfig
	timeouts *config.Timeouts
	log      logr.Logger
	metrics  *Metrics

	// launchOffset rotates the starting location for each launch attempt.
	launchOffset atomic.Uint64
}

// ComputeAPI is the slice of the provider surface the pool uses.
type ComputeAPI = platform.ServerAPI

// Option configures a Pool.
type Option func(*Pool)

// WithMetrics registers pool metrics on the given registerer.
func WithMetrics(m *Metrics) Option {
	return func(p *Pool) {
		p.metrics = m
	}
}

// New creates a pool service.
func New(compute ComputeAPI, secrets SecretReader, cfg config.PoolConfig, timeouts *config.Timeouts, log logr.Logger, opts ...Option) *Pool {
	p := &Pool{
		compute:  compute,
		secrets:  secrets,
		cfg:      cfg,
		timeouts: timeouts,
		log:      log.WithName("pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	return p
}

// TargetSpare returns the configured spare target.
func (p *Pool) TargetSpare() int {
	return p.cfg.TargetSpare
}

// instanceFromServer derives an Instance from provider state. A missing or
// unrecognized status label means initializing: a server we cannot positively
// classify must never be handed to a tenant.
func instanceFromServer(s *hcloudsdk.Server) Instance {
	inst := Instance{
		ID:         s.ID,
		Name:       s.Name,
		Status:     StatusInitializing,
		Tenant:     s.Labels[labels.KeyTenant],
		SecretRef:  naming.BootstrapSecret(s.Name),
		LaunchedAt: s.Created,
	}

	switch s.Labels[labels.KeyStatus] {
	case labels.StatusAvailable:
		inst.Status = StatusAvailable
	case labels.StatusAssigned:
		inst.Status = StatusAssigned
	}

	if s.PublicNet.IPv4.IP != nil {
		inst.PublicIP = s.PublicNet.IPv4.IP.String()
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		inst.PrivateIP = s.PrivateNet[0].IP.String()
	}

	return inst
}

// newInstanceName produces a unique provider-side name for a fresh instance.
func (p *Pool) newInstanceName() string {
	return naming.Instance(p.cfg.Name, uuid.NewString()[:8])
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
