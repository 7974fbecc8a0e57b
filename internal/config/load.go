package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pool.Image == "" {
		cfg.Pool.Image = "debian-12"
	}
	if cfg.Router.LoadBalancerType == "" {
		cfg.Router.LoadBalancerType = "lb11"
	}
	if cfg.Router.ListenPortMin == 0 && cfg.Router.ListenPortMax == 0 {
		cfg.Router.ListenPortMin = 10000
		cfg.Router.ListenPortMax = 29999
	}
	if cfg.Router.WorkloadPort == 0 {
		cfg.Router.WorkloadPort = 8080
	}
	if cfg.Router.HealthCheckPath == "" {
		cfg.Router.HealthCheckPath = "/health"
	}
	if cfg.Secrets.Region == "" {
		cfg.Secrets.Region = "eu-central"
	}
	if cfg.RemoteExec.User == "" {
		cfg.RemoteExec.User = "root"
	}
	if cfg.RemoteExec.HealthPort == 0 {
		cfg.RemoteExec.HealthPort = cfg.Router.WorkloadPort
	}
}
