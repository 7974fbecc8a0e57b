package provision

import (
	"errors"
	"fmt"
)

// PartialProvisioningError reports a provisioning failure together with the
// outcome of the rollback that followed it. Cause is the step that failed;
// CleanupErrs holds rollback steps that themselves failed and therefore may
// have leaked provider resources.
type PartialProvisioningError struct {
	TenantID    string
	Cause       error
	CleanupErrs []error
}

func (e *PartialProvisioningError) Error() string {
	if len(e.CleanupErrs) == 0 {
		return fmt.Sprintf("failed to provision tenant %s (rolled back): %v", e.TenantID, e.Cause)
	}
	return fmt.Sprintf("failed to provision tenant %s (rollback incomplete, %d cleanup errors): %v",
		e.TenantID, len(e.CleanupErrs), e.Cause)
}

func (e *PartialProvisioningError) Unwrap() error { return e.Cause }

// IsPartialProvisioning reports whether err carries a PartialProvisioningError.
func IsPartialProvisioning(err error) bool {
	var target *PartialProvisioningError
	return errors.As(err, &target)
}
