package remotecmd

import (
	"errors"
	"fmt"
	"time"
)

// CommandFailedError reports a remote invocation that reached a terminal
// failure. The captured output rides along for diagnosis.
type CommandFailedError struct {
	Invocation *Invocation
	Cause      error
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("remote command %s failed on %s: %v", e.Invocation.ID, e.Invocation.InstanceAddr, e.Cause)
	if e.Invocation.Output != "" {
		msg += "\noutput: " + e.Invocation.Output
	}
	return msg
}

func (e *CommandFailedError) Unwrap() error {
	return e.Cause
}

// CommandTimeoutError reports an invocation that did not reach a terminal
// state within its budget. The script may still be running on the instance.
type CommandTimeoutError struct {
	Invocation *Invocation
	Timeout    time.Duration
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("remote command %s on %s did not finish within %s", e.Invocation.ID, e.Invocation.InstanceAddr, e.Timeout)
}

// IsTimeout reports whether err is a remote command timeout.
func IsTimeout(err error) bool {
	var e *CommandTimeoutError
	return errors.As(err, &e)
}

// IsFailed reports whether err is a terminal remote command failure.
func IsFailed(err error) bool {
	var e *CommandFailedError
	return errors.As(err, &e)
}
