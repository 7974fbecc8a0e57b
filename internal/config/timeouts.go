package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	ColdStartWait     time.Duration // Waiting for a synchronously launched instance to become available
	HealthWait        time.Duration // Waiting for a workload container to report healthy after restart
	RemoteScript      time.Duration // Default budget for a generic remote script
	Delete            time.Duration // All delete operations
	PollInterval      time.Duration // Remote command status polling interval
	RetryMaxAttempts  int           // Maximum number of retry attempts for provider calls
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, the default is used.
//
// Environment Variables:
//   - WARMPOOL_TIMEOUT_COLD_START (default: 180s)
//   - WARMPOOL_TIMEOUT_HEALTH (default: 30s)
//   - WARMPOOL_TIMEOUT_REMOTE_SCRIPT (default: 120s)
//   - WARMPOOL_TIMEOUT_DELETE (default: 5m)
//   - WARMPOOL_POLL_INTERVAL (default: 2s)
//   - WARMPOOL_RETRY_MAX_ATTEMPTS (default: 5)
//   - WARMPOOL_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ColdStartWait:     parseDuration("WARMPOOL_TIMEOUT_COLD_START", 180*time.Second),
		HealthWait:        parseDuration("WARMPOOL_TIMEOUT_HEALTH", 30*time.Second),
		RemoteScript:      parseDuration("WARMPOOL_TIMEOUT_REMOTE_SCRIPT", 120*time.Second),
		Delete:            parseDuration("WARMPOOL_TIMEOUT_DELETE", 5*time.Minute),
		PollInterval:      parseDuration("WARMPOOL_POLL_INTERVAL", 2*time.Second),
		RetryMaxAttempts:  parseInt("WARMPOOL_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("WARMPOOL_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
