// Package labels defines the label schema for pool resources.
//
// The pool keeps no database: an instance's lifecycle status, owning tenant,
// and pool membership live entirely as labels on the underlying cloud server
// and are re-read from the provider on every query. Label keys use the
// warmpool.io prefix for namespacing.
package labels

// Standard label keys for pool resources.
const (
	// KeyPool identifies which pool a server belongs to.
	KeyPool = "warmpool.io/pool"

	// KeyStatus holds the instance lifecycle status.
	KeyStatus = "warmpool.io/status"

	// KeyTenant holds the owning tenant id, absent while unassigned.
	KeyTenant = "warmpool.io/tenant"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "warmpool.io/managed-by"
)

// Status label values. Anything else found on a server is treated as
// StatusInitializing by the inventory, never as available.
const (
	StatusInitializing = "initializing"
	StatusAvailable    = "available"
	StatusAssigned     = "assigned"
)

// ManagedByWarmpool is the value written under KeyManagedBy.
const ManagedByWarmpool = "warmpool"

// LabelBuilder provides a fluent interface for building pool resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the pool name and manager pre-set.
func NewLabelBuilder(poolName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyPool:      poolName,
			KeyManagedBy: ManagedByWarmpool,
		},
	}
}

// WithStatus sets the lifecycle status label.
func (lb *LabelBuilder) WithStatus(status string) *LabelBuilder {
	lb.labels[KeyStatus] = status
	return lb
}

// WithTenant sets the owning tenant label. Empty tenant ids are skipped so
// unassigned instances carry no tenant key at all.
func (lb *LabelBuilder) WithTenant(tenantID string) *LabelBuilder {
	if tenantID != "" {
		lb.labels[KeyTenant] = tenantID
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForPool returns a label selector matching every server in a pool.
func SelectorForPool(poolName string) string {
	return KeyPool + "=" + poolName
}

// SelectorForTenant returns a label selector matching the servers assigned to
// one tenant.
func SelectorForTenant(tenantID string) string {
	return KeyTenant + "=" + tenantID
}
