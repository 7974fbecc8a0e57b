package hcloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

func apiErr(code hcloud.ErrorCode) error {
	return hcloud.Error{Code: code, Message: string(code)}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()
	if !IsNotFound(apiErr(hcloud.ErrorCodeNotFound)) {
		t.Error("not_found should be classified as not found")
	}
	if IsNotFound(apiErr(hcloud.ErrorCodeLocked)) {
		t.Error("locked is not a not-found error")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain errors are not provider not-found errors")
	}
	if IsNotFound(nil) {
		t.Error("nil is not an error at all")
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("outer: %w", apiErr(hcloud.ErrorCodeNotFound))
	if !IsNotFound(err) {
		t.Error("wrapped provider errors should still be classified")
	}
}

func TestIsResourceLocked(t *testing.T) {
	t.Parallel()
	for _, code := range []hcloud.ErrorCode{
		hcloud.ErrorCodeLocked,
		hcloud.ErrorCodeConflict,
		hcloud.ErrorCodeResourceLocked,
		hcloud.ErrorCodeResourceUnavailable,
	} {
		if !isResourceLocked(apiErr(code)) {
			t.Errorf("%s should be retryable", code)
		}
	}
	if isResourceLocked(apiErr(hcloud.ErrorCodeInvalidInput)) {
		t.Error("invalid_input is not retryable")
	}
}

func TestIsInvalidParameter(t *testing.T) {
	t.Parallel()
	if !isInvalidParameter(apiErr(hcloud.ErrorCodeInvalidInput)) {
		t.Error("invalid_input should be fatal")
	}
	if isInvalidParameter(apiErr(hcloud.ErrorCodeRateLimitExceeded)) {
		t.Error("rate limiting is not an invalid parameter")
	}
	if !IsRateLimited(apiErr(hcloud.ErrorCodeRateLimitExceeded)) {
		t.Error("rate limit error should be classified")
	}
}
