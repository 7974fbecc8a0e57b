// Package provision composes the pool, router, and remote executor into
// tenant-level create/delete/rotate flows with best-effort rollback.
//
// Creation is the one flow that must not leak: a half-built tenant
// environment (instance assigned but no route, or route without target) is
// rolled back in reverse order before the failure is re-raised. Teardown is
// the opposite: every step runs regardless of earlier failures, because a
// leftover provider resource is better than a teardown that gives up halfway.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/hostbay/warmpool/internal/platform/s3"
	"github.com/hostbay/warmpool/internal/pool"
	"github.com/hostbay/warmpool/internal/router"
	"github.com/hostbay/warmpool/internal/util/naming"
)

// Assigner is the pool surface the orchestrator drives.
type Assigner interface {
	AssignToTenant(ctx context.Context, tenantID string) (*pool.Assignment, error)
	Release(ctx context.Context, instanceID int64) error
	Terminate(ctx context.Context, instanceID int64) error
}

// RouteManager is the router surface the orchestrator drives.
type RouteManager interface {
	CreateRoute(ctx context.Context, tenantKey string) (router.Route, error)
	RouteFor(tenantKey string) router.Route
	RegisterTarget(ctx context.Context, route router.Route, serverID int64) error
	DeregisterTarget(ctx context.Context, route router.Route, serverID int64) error
	DeleteRoute(ctx context.Context, route router.Route) error
}

// CredentialRotator restarts a tenant workload with merged credentials.
type CredentialRotator interface {
	RotateCredentials(ctx context.Context, instanceAddr string, platformKeys, tenantKeys map[string]string, healthPort int) error
}

// SecretStore is the secret surface the orchestrator drives.
type SecretStore interface {
	GetSecret(ctx context.Context, key string) ([]byte, error)
	DeleteSecret(ctx context.Context, key string) error
}

// TenantInstance is a fully provisioned tenant environment.
type TenantInstance struct {
	TenantID     string
	InstanceID   int64
	InstanceName string
	Address      string
	Secret       []byte
	Route        router.Route
}

// Orchestrator wires assignment, routing, and credential rotation together.
type Orchestrator struct {
	pool       Assigner
	router     RouteManager
	rotator    CredentialRotator
	secrets    SecretStore
	healthPort int
	log        logr.Logger
}

// New creates an orchestrator.
func New(p Assigner, r RouteManager, rotator CredentialRotator, secrets SecretStore, healthPort int, log logr.Logger) *Orchestrator {
	return &Orchestrator{
		pool:       p,
		router:     r,
		rotator:    rotator,
		secrets:    secrets,
		healthPort: healthPort,
		log:        log.WithName("provision"),
	}
}

// CreateTenantInstance provisions a tenant end to end: claim an instance,
// create its route, register it as the route's target. Any failure triggers
// reverse-order cleanup of the steps already completed, then surfaces one
// aggregated error.
func (o *Orchestrator) CreateTenantInstance(ctx context.Context, tenantID string) (*TenantInstance, error) {
	assignment, err := o.pool.AssignToTenant(ctx, tenantID)
	if err != nil {
		// nothing to undo yet
		return nil, fmt.Errorf("failed to provision tenant %s: %w", tenantID, err)
	}

	route, err := o.router.CreateRoute(ctx, tenantID)
	if err != nil {
		cleanupErrs := o.rollback(ctx, tenantID, assignment, nil)
		return nil, &PartialProvisioningError{TenantID: tenantID, Cause: err, CleanupErrs: cleanupErrs}
	}

	if err := o.router.RegisterTarget(ctx, route, assignment.InstanceID); err != nil {
		cleanupErrs := o.rollback(ctx, tenantID, assignment, &route)
		return nil, &PartialProvisioningError{TenantID: tenantID, Cause: err, CleanupErrs: cleanupErrs}
	}

	o.log.Info("provisioned tenant", "tenant", tenantID, "instance", assignment.Name)
	return &TenantInstance{
		TenantID:     tenantID,
		InstanceID:   assignment.InstanceID,
		InstanceName: assignment.Name,
		Address:      assignment.Address,
		Secret:       assignment.Secret,
		Route:        route,
	}, nil
}

// rollback undoes completed provisioning steps in reverse order. Each step is
// best-effort: a rollback failure is collected, logged, and does not stop the
// remaining steps.
func (o *Orchestrator) rollback(ctx context.Context, tenantID string, assignment *pool.Assignment, route *router.Route) []error {
	var errs []error

	if route != nil {
		if err := o.router.DeregisterTarget(ctx, *route, assignment.InstanceID); err != nil {
			o.log.Error(err, "rollback: failed to deregister target", "tenant", tenantID)
			errs = append(errs, err)
		}
		if err := o.router.DeleteRoute(ctx, *route); err != nil {
			o.log.Error(err, "rollback: failed to delete route", "tenant", tenantID)
			errs = append(errs, err)
		}
	}

	// release, not terminate: the instance is healthy, the provisioning
	// around it failed
	if err := o.pool.Release(ctx, assignment.InstanceID); err != nil {
		o.log.Error(err, "rollback: failed to release instance", "tenant", tenantID, "instance", assignment.Name)
		errs = append(errs, err)
	}

	return errs
}

// TeardownParams identifies what a teardown should remove. Zero-valued fields
// are skipped with a log line rather than failing the remaining steps; the
// calling layer may never have persisted them.
type TeardownParams struct {
	TenantID     string
	InstanceID   int64
	InstanceName string
}

// DeleteTenantInstance tears a tenant environment down: deregister the
// target, delete the route, terminate the instance, delete its bootstrap
// secret. Every step is independently best-effort. The joined error reports
// what failed; callers log it and move on rather than retrying teardown.
func (o *Orchestrator) DeleteTenantInstance(ctx context.Context, params TeardownParams) error {
	var errs []error
	route := o.router.RouteFor(params.TenantID)

	if params.InstanceID != 0 {
		if err := o.router.DeregisterTarget(ctx, route, params.InstanceID); err != nil {
			o.log.Error(err, "teardown: failed to deregister target", "tenant", params.TenantID)
			errs = append(errs, err)
		}
	} else {
		o.log.Info("teardown: no instance id recorded, skipping target deregistration", "tenant", params.TenantID)
	}

	if err := o.router.DeleteRoute(ctx, route); err != nil {
		o.log.Error(err, "teardown: failed to delete route", "tenant", params.TenantID)
		errs = append(errs, err)
	}

	if params.InstanceID != 0 {
		if err := o.pool.Terminate(ctx, params.InstanceID); err != nil {
			o.log.Error(err, "teardown: failed to terminate instance", "tenant", params.TenantID)
			errs = append(errs, err)
		}
	} else {
		o.log.Info("teardown: no instance id recorded, skipping termination", "tenant", params.TenantID)
	}

	if params.InstanceName != "" {
		if err := o.secrets.DeleteSecret(ctx, naming.BootstrapSecret(params.InstanceName)); err != nil {
			o.log.Error(err, "teardown: failed to delete bootstrap secret", "tenant", params.TenantID)
			errs = append(errs, err)
		}
	} else {
		o.log.Info("teardown: no instance name recorded, skipping secret deletion", "tenant", params.TenantID)
	}

	return errors.Join(errs...)
}

// RotateTenantCredentials reads the platform and tenant key sets from the
// secret store and pushes a merged credential rotation to the instance.
// A missing key set is treated as empty: rotation with only platform keys
// (or only tenant keys) is legitimate.
func (o *Orchestrator) RotateTenantCredentials(ctx context.Context, tenantID, instanceAddr string) error {
	platformKeys, err := o.readKeySet(ctx, naming.PlatformKeys())
	if err != nil {
		return fmt.Errorf("failed to read platform keys: %w", err)
	}
	tenantKeys, err := o.readKeySet(ctx, naming.TenantKeys(tenantID))
	if err != nil {
		return fmt.Errorf("failed to read tenant keys for %s: %w", tenantID, err)
	}

	if err := o.rotator.RotateCredentials(ctx, instanceAddr, platformKeys, tenantKeys, o.healthPort); err != nil {
		return fmt.Errorf("credential rotation failed for tenant %s: %w", tenantID, err)
	}

	o.log.Info("rotated credentials", "tenant", tenantID, "addr", instanceAddr)
	return nil
}

// readKeySet loads a provider→key map stored as JSON. Absence is an empty
// set, not an error; any other store failure is.
func (o *Orchestrator) readKeySet(ctx context.Context, key string) (map[string]string, error) {
	blob, err := o.secrets.GetSecret(ctx, key)
	if errors.Is(err, s3.ErrSecretNotFound) {
		o.log.Info("key set not found, treating as empty", "key", key)
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	keys := map[string]string{}
	if err := json.Unmarshal(blob, &keys); err != nil {
		return nil, fmt.Errorf("key set %s is not valid JSON: %w", key, err)
	}
	return keys, nil
}
