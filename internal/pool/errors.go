package pool

import (
	"errors"
	"fmt"
	"strings"
)

// PoolExhaustedError reports that no instance was available and the
// synchronous cold-start fallback also failed or timed out. It is not retried
// internally; the caller decides whether to retry or alert.
type PoolExhaustedError struct {
	Cause error
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("pool exhausted: cold start failed: %v", e.Cause)
}

func (e *PoolExhaustedError) Unwrap() error {
	return e.Cause
}

// SecretMissingError reports an instance that is labeled available but whose
// bootstrap secret cannot be read. The instance is corrupt for assignment
// purposes; the assignment fails rather than silently skipping to another
// instance.
type SecretMissingError struct {
	InstanceName string
	SecretRef    string
	Cause        error
}

func (e *SecretMissingError) Error() string {
	return fmt.Sprintf("bootstrap secret %s missing for instance %s: %v", e.SecretRef, e.InstanceName, e.Cause)
}

func (e *SecretMissingError) Unwrap() error {
	return e.Cause
}

// LaunchError aggregates the per-location failures of one launch attempt.
// It is only returned once every configured location has been tried.
type LaunchError struct {
	Attempts []LaunchAttempt
}

// LaunchAttempt records one failed launch in one location.
type LaunchAttempt struct {
	Location string
	Err      error
}

func (e *LaunchError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Location, a.Err))
	}
	return fmt.Sprintf("launch failed in all %d locations: %s", len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap exposes the underlying errors for errors.Is/As chains.
func (e *LaunchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// IsPoolExhausted reports whether err is a pool exhaustion failure.
func IsPoolExhausted(err error) bool {
	var e *PoolExhaustedError
	return errors.As(err, &e)
}

// IsSecretMissing reports whether err is a missing bootstrap secret.
func IsSecretMissing(err error) bool {
	var e *SecretMissingError
	return errors.As(err, &e)
}
