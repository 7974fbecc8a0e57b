package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestIsNotFoundError_TypedErrors(t *testing.T) {
	t.Parallel()
	if !isNotFoundError(&types.NoSuchKey{}) {
		t.Error("NoSuchKey should be not-found")
	}
	if !isNotFoundError(&types.NoSuchBucket{}) {
		t.Error("NoSuchBucket should be not-found")
	}
	if !isNotFoundError(&types.NotFound{}) {
		t.Error("NotFound should be not-found")
	}
}

func TestIsNotFoundError_APICode(t *testing.T) {
	t.Parallel()
	err := &smithy.GenericAPIError{Code: "NoSuchKey", Message: "no such key"}
	if !isNotFoundError(err) {
		t.Error("generic NoSuchKey code should be not-found")
	}

	err = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	if isNotFoundError(err) {
		t.Error("AccessDenied is not a not-found error")
	}
}

func TestIsNotFoundError_Wrapped(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("outer: %w", &types.NoSuchKey{})
	if !isNotFoundError(err) {
		t.Error("wrapped not-found errors should still be classified")
	}
	if isNotFoundError(errors.New("plain")) {
		t.Error("plain errors are not not-found")
	}
	if isNotFoundError(nil) {
		t.Error("nil is not an error")
	}
}
