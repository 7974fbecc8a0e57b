// Package config holds the warmpool configuration model and loading logic.
package config

import (
	"fmt"
	"os"
)

// Config is the top-level warmpool configuration.
type Config struct {
	Pool       PoolConfig       `mapstructure:"pool" yaml:"pool"`
	Router     RouterConfig     `mapstructure:"router" yaml:"router"`
	Secrets    SecretsConfig    `mapstructure:"secrets" yaml:"secrets"`
	RemoteExec RemoteExecConfig `mapstructure:"remote_exec" yaml:"remote_exec"`
}

// PoolConfig describes the warm pool itself.
type PoolConfig struct {
	// Name is the pool identifier; every provider resource is labeled with it.
	Name string `mapstructure:"name" yaml:"name"`

	// TargetSpare is the number of unassigned instances the replenisher
	// keeps launched.
	TargetSpare int `mapstructure:"target_spare" yaml:"target_spare"`

	ServerType string `mapstructure:"server_type" yaml:"server_type"`
	Image      string `mapstructure:"image" yaml:"image"`

	// Locations are tried in round-robin order when launching an instance.
	Locations []string `mapstructure:"locations" yaml:"locations"`

	// SSHKeys are the provider-side key names injected at launch.
	SSHKeys []string `mapstructure:"ssh_keys" yaml:"ssh_keys"`
}

// RouterConfig describes the shared load balancer and per-tenant routing.
type RouterConfig struct {
	LoadBalancerType string `mapstructure:"load_balancer_type" yaml:"load_balancer_type"`
	Location         string `mapstructure:"location" yaml:"location"`

	// ListenPortMin/Max bound the deterministic per-tenant listen ports.
	ListenPortMin int `mapstructure:"listen_port_min" yaml:"listen_port_min"`
	ListenPortMax int `mapstructure:"listen_port_max" yaml:"listen_port_max"`

	// WorkloadPort is the destination port the tenant workload listens on.
	WorkloadPort int `mapstructure:"workload_port" yaml:"workload_port"`

	// HealthCheckPath is probed by the load balancer on each target.
	HealthCheckPath string `mapstructure:"health_check_path" yaml:"health_check_path"`
}

// SecretsConfig describes the S3-compatible object store holding bootstrap
// secrets and API key sets. Credentials come from the environment, never from
// the config file.
type SecretsConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Region   string `mapstructure:"region" yaml:"region"`
	Bucket   string `mapstructure:"bucket" yaml:"bucket"`
}

// RemoteExecConfig describes how remote scripts reach instances.
type RemoteExecConfig struct {
	User           string `mapstructure:"user" yaml:"user"`
	PrivateKeyFile string `mapstructure:"private_key_file" yaml:"private_key_file"`

	// HealthPort is the instance-local port probed after container restarts.
	HealthPort int `mapstructure:"health_port" yaml:"health_port"`
}

// SecretsAccessKey and SecretsSecretKey read the object-store credentials
// from the environment.
func SecretsAccessKey() string { return os.Getenv("WARMPOOL_SECRETS_ACCESS_KEY") }
func SecretsSecretKey() string { return os.Getenv("WARMPOOL_SECRETS_SECRET_KEY") }

// Validate rejects configurations the pool cannot operate with.
func (c *Config) Validate() error {
	if c.Pool.Name == "" {
		return fmt.Errorf("pool.name must be set")
	}
	if c.Pool.TargetSpare < 0 {
		return fmt.Errorf("pool.target_spare must not be negative")
	}
	if c.Pool.ServerType == "" {
		return fmt.Errorf("pool.server_type must be set")
	}
	if len(c.Pool.Locations) == 0 {
		return fmt.Errorf("pool.locations must list at least one location")
	}
	if c.Router.ListenPortMin <= 0 || c.Router.ListenPortMax <= 0 {
		return fmt.Errorf("router listen port range must be set")
	}
	if c.Router.ListenPortMin > c.Router.ListenPortMax {
		return fmt.Errorf("router.listen_port_min %d exceeds listen_port_max %d",
			c.Router.ListenPortMin, c.Router.ListenPortMax)
	}
	if c.Router.WorkloadPort <= 0 {
		return fmt.Errorf("router.workload_port must be set")
	}
	if c.Secrets.Bucket == "" {
		return fmt.Errorf("secrets.bucket must be set")
	}
	return nil
}
