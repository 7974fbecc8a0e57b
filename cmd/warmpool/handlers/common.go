// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/hostbay/warmpool/internal/config"
	platform "github.com/hostbay/warmpool/internal/platform/hcloud"
	"github.com/hostbay/warmpool/internal/platform/s3"
	"github.com/hostbay/warmpool/internal/pool"
	"github.com/hostbay/warmpool/internal/provision"
	"github.com/hostbay/warmpool/internal/remotecmd"
	"github.com/hostbay/warmpool/internal/router"
)

// defaultConfigFile is looked up in the working directory when no --config
// flag is given.
const defaultConfigFile = "warmpool.yaml"

// secretAPI is the secret-store surface the handlers wire in. Satisfied by
// *s3.SecretStore.
type secretAPI interface {
	GetSecret(ctx context.Context, key string) ([]byte, error)
	DeleteSecret(ctx context.Context, key string) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// loadTimeouts loads operation timeouts from the environment.
	loadTimeouts = config.LoadTimeouts

	// newComputeClient creates the cloud provider client.
	newComputeClient = func(token string, timeouts *config.Timeouts) platform.Client {
		return platform.NewRealClient(token, platform.WithTimeouts(timeouts))
	}

	// newSecretStore creates the object-store secret client.
	newSecretStore = func(cfg config.SecretsConfig) (secretAPI, error) {
		return s3.NewSecretStore(cfg.Endpoint, cfg.Region, cfg.Bucket,
			config.SecretsAccessKey(), config.SecretsSecretKey())
	}

	// newRunner creates the remote command transport.
	newRunner = func(cfg config.RemoteExecConfig) (remotecmd.Runner, error) {
		return remotecmd.NewSSHRunner(cfg)
	}

	// newLogger builds the process logger.
	newLogger = func() (logr.Logger, error) {
		zl, err := zap.NewProduction()
		if err != nil {
			return logr.Logger{}, fmt.Errorf("failed to build logger: %w", err)
		}
		return zapr.NewLogger(zl), nil
	}
)

// services holds the wired object graph the handlers operate on.
type services struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	pool     *pool.Pool
	router   *router.Router
	secrets  secretAPI
	executor *remotecmd.Executor
	orch     *provision.Orchestrator
	log      logr.Logger
}

// buildServices loads configuration and wires the full service graph. Every
// handler goes through here so the wiring stays in one place.
func buildServices(configPath string) (*services, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	if configPath == "" {
		configPath = defaultConfigFile
	}
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	token := os.Getenv("HCLOUD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("HCLOUD_TOKEN environment variable is required")
	}

	timeouts := loadTimeouts()
	compute := newComputeClient(token, timeouts)

	secrets, err := newSecretStore(cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret store: %w", err)
	}

	runner, err := newRunner(cfg.RemoteExec)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote exec transport: %w", err)
	}

	p := pool.New(compute, secrets, cfg.Pool, timeouts, log, pool.WithMetrics(pool.NewMetrics(nil)))
	r := router.New(compute, cfg.Router, cfg.Pool.Name, log)
	executor := remotecmd.NewExecutor(runner, timeouts, log)
	orch := provision.New(p, r, executor, secrets, cfg.RemoteExec.HealthPort, log)

	return &services{
		cfg:      cfg,
		timeouts: timeouts,
		pool:     p,
		router:   r,
		secrets:  secrets,
		executor: executor,
		orch:     orch,
		log:      log,
	}, nil
}
