// Package hcloud provides a wrapper around the Hetzner Cloud API.
package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ServerCreateOpts holds all parameters for launching a pool instance.
type ServerCreateOpts struct {
	Name       string
	ServerType string
	Image      string
	Location   string
	SSHKeys    []string
	Labels     map[string]string
	UserData   string
}

// ServerAPI is the compute surface the pool consumes. Instance lifecycle
// state lives entirely in server labels, so the only mutation beside
// create/delete is a label update.
type ServerAPI interface {
	// CreateServer launches a server and waits for the create action to
	// complete. The returned server may still be booting.
	CreateServer(ctx context.Context, opts ServerCreateOpts) (*hcloud.Server, error)
	DeleteServer(ctx context.Context, id int64) error
	GetServer(ctx context.Context, id int64) (*hcloud.Server, error)
	// GetServersByLabel returns all servers matching the label selector.
	GetServersByLabel(ctx context.Context, selector string) ([]*hcloud.Server, error)
	// UpdateServerLabels replaces the server's labels. Last writer wins;
	// the provider offers no compare-and-swap on labels.
	UpdateServerLabels(ctx context.Context, id int64, labelsMap map[string]string) (*hcloud.Server, error)
}

// LoadBalancerAPI is the routing surface the router consumes. One shared
// load balancer carries a health-checked service per tenant plus server
// targets for the assigned instances.
type LoadBalancerAPI interface {
	EnsureLoadBalancer(ctx context.Context, name, location, lbType string, lbLabels map[string]string) (*hcloud.LoadBalancer, error)
	GetLoadBalancer(ctx context.Context, name string) (*hcloud.LoadBalancer, error)
	AddService(ctx context.Context, lb *hcloud.LoadBalancer, opts hcloud.LoadBalancerAddServiceOpts) error
	DeleteService(ctx context.Context, lb *hcloud.LoadBalancer, listenPort int) error
	AddServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, serverID int64) error
	RemoveServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, serverID int64) error
}

// Client combines the provider surfaces warmpool needs.
type Client interface {
	ServerAPI
	LoadBalancerAPI
}
