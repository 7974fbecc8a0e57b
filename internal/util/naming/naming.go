package naming

import "fmt"

// Naming functions for pool resources.
// All provider resources follow consistent naming patterns so that a pool can
// be identified and cleaned up without any local state.

func Instance(pool, id string) string {
	return fmt.Sprintf("%s-%s", pool, id)
}

func LoadBalancer(pool string) string {
	return fmt.Sprintf("%s-router", pool)
}

// BootstrapSecret is the deterministic object key under which boot-time
// tooling stores an instance's bootstrap credential.
func BootstrapSecret(instanceID string) string {
	return fmt.Sprintf("pool/instance/%s/token", instanceID)
}

// PlatformKeys is the object key holding the platform-level API key set.
func PlatformKeys() string {
	return "pool/platform/keys"
}

// TenantKeys is the object key holding a tenant's API key overrides.
func TenantKeys(tenantID string) string {
	return fmt.Sprintf("pool/tenant/%s/keys", tenantID)
}

// RouteService names the per-tenant load balancer service.
func RouteService(pool, tenantKey string) string {
	return fmt.Sprintf("%s-route-%s", pool, tenantKey)
}
