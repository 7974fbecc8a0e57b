package remotecmd

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/hostbay/warmpool/internal/util/retry"
)

// workloadEnvFile is where the workload container reads its credentials.
const workloadEnvFile = "/etc/warmpool/workload.env"

// restartCommand restarts the tenant workload container with a fresh env file.
const restartCommand = "docker restart workload"

// MergeKeys merges platform-level and tenant-level API keys. A tenant key
// overrides the platform key for the same provider.
func MergeKeys(platformKeys, tenantKeys map[string]string) map[string]string {
	merged := make(map[string]string, len(platformKeys)+len(tenantKeys))
	for provider, key := range platformKeys {
		merged[provider] = key
	}
	for provider, key := range tenantKeys {
		merged[provider] = key
	}
	return merged
}

// renderEnvFile renders keys as KEY=VALUE lines in stable order.
func renderEnvFile(keys map[string]string) string {
	providers := make([]string, 0, len(keys))
	for provider := range keys {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	var b strings.Builder
	for _, provider := range providers {
		fmt.Fprintf(&b, "%s=%s\n", provider, keys[provider])
	}
	return b.String()
}

// RotateCredentials replaces the workload's credential environment and
// restarts its container, then waits for the instance-local health endpoint
// to come back within the health-wait budget. A workload that never reports
// healthy is a loud failure, not a warning.
//
// The env file travels over stdin so credentials never appear in a command
// line or remote shell history.
func (e *Executor) RotateCredentials(ctx context.Context, instanceAddr string, platformKeys, tenantKeys map[string]string, healthPort int) error {
	merged := MergeKeys(platformKeys, tenantKeys)
	envFile := renderEnvFile(merged)

	writeCmd := fmt.Sprintf("mkdir -p /etc/warmpool && install -m 600 /dev/stdin %s", workloadEnvFile)
	if _, err := e.runner.ExecuteWithInput(ctx, instanceAddr, writeCmd, envFile); err != nil {
		return fmt.Errorf("failed to write workload env on %s: %w", instanceAddr, err)
	}

	if out, err := e.runner.Execute(ctx, instanceAddr, restartCommand); err != nil {
		inv := &Invocation{
			ID:           "restart",
			InstanceAddr: instanceAddr,
			Script:       restartCommand,
			Status:       StatusFailed,
			Output:       out,
		}
		return &CommandFailedError{Invocation: inv, Cause: err}
	}

	e.log.Info("restarted workload container", "addr", instanceAddr)

	if err := e.waitHealthy(ctx, instanceAddr, healthPort); err != nil {
		return err
	}

	e.log.Info("workload healthy after credential rotation", "addr", instanceAddr)
	return nil
}

// waitHealthy polls the instance-local health endpoint until it answers 200
// or the health-wait budget is spent.
func (e *Executor) waitHealthy(ctx context.Context, instanceAddr string, healthPort int) error {
	url := fmt.Sprintf("http://%s:%d/health", instanceAddr, healthPort)

	healthCtx, cancel := context.WithTimeout(ctx, e.timeouts.HealthWait)
	defer cancel()

	interval := e.timeouts.PollInterval
	attempts := int(e.timeouts.HealthWait/interval) + 1

	client := &http.Client{Timeout: interval}
	err := retry.WithExponentialBackoff(healthCtx, func() error {
		req, reqErr := http.NewRequestWithContext(healthCtx, http.MethodGet, url, nil)
		if reqErr != nil {
			return retry.Fatal(reqErr)
		}
		resp, doErr := client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
		}
		return nil
	},
		retry.WithMaxRetries(attempts),
		retry.WithInitialDelay(interval),
		retry.WithMultiplier(1.0),
	)

	if err != nil {
		inv := &Invocation{
			ID:           "health-wait",
			InstanceAddr: instanceAddr,
			Status:       StatusTimeout,
		}
		return &CommandTimeoutError{Invocation: inv, Timeout: e.timeouts.HealthWait}
	}
	return nil
}
