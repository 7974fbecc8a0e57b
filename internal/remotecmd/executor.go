// Package remotecmd pushes scripts to pool instances and polls them to
// completion.
//
// A submitted script runs detached on the instance with its exit code and
// combined output captured under a per-invocation state directory; the
// executor polls that directory at a fixed interval until a terminal state or
// the invocation's timeout. The transport is SSH, but nothing here assumes
// it: any Runner that can execute a command on an address works.
package remotecmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/hostbay/warmpool/internal/config"
	"github.com/hostbay/warmpool/internal/util/retry"
)

// Status is the lifecycle state of one remote invocation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusTimeout    Status = "timeout"
)

// stateDir is where instances keep per-invocation state.
const stateDir = "/var/run/warmpool"

// Invocation is one remote script run.
type Invocation struct {
	ID           string
	InstanceAddr string
	Script       string
	Status       Status
	Output       string
}

// Runner executes a command on a remote address. The SSH-backed
// implementation lives in this package; tests substitute their own.
type Runner interface {
	Execute(ctx context.Context, addr, command string) (string, error)
	ExecuteWithInput(ctx context.Context, addr, command, input string) (string, error)
}

// Executor submits scripts and polls invocation state.
type Executor struct {
	runner   Runner
	timeouts *config.Timeouts
	log      logr.Logger
}

// NewExecutor creates an executor over the given transport.
func NewExecutor(runner Runner, timeouts *config.Timeouts, log logr.Logger) *Executor {
	return &Executor{
		runner:   runner,
		timeouts: timeouts,
		log:      log.WithName("remotecmd"),
	}
}

// RunRemoteScript submits script to the instance and polls until it reaches a
// terminal state or timeout elapses. A zero timeout uses the configured
// default. The returned invocation carries the captured output in every
// terminal state; on failure or timeout the error carries it too.
func (e *Executor) RunRemoteScript(ctx context.Context, instanceAddr, script string, timeout time.Duration) (*Invocation, error) {
	if timeout <= 0 {
		timeout = e.timeouts.RemoteScript
	}

	inv := &Invocation{
		ID:           uuid.NewString(),
		InstanceAddr: instanceAddr,
		Script:       script,
		Status:       StatusPending,
	}

	if err := e.submit(ctx, inv); err != nil {
		inv.Status = StatusFailed
		return inv, &CommandFailedError{Invocation: inv, Cause: err}
	}
	inv.Status = StatusInProgress
	e.log.Info("submitted remote script", "invocation", inv.ID, "addr", instanceAddr)

	return e.poll(ctx, inv, timeout)
}

// submit ships the script over stdin and starts it detached, with exit code
// and combined output captured under the invocation's state directory.
func (e *Executor) submit(ctx context.Context, inv *Invocation) error {
	dir := fmt.Sprintf("%s/%s", stateDir, inv.ID)
	command := strings.Join([]string{
		fmt.Sprintf("mkdir -p %s", dir),
		fmt.Sprintf("cat > %s/script", dir),
		fmt.Sprintf("chmod 700 %s/script", dir),
		fmt.Sprintf("nohup sh -c '%[1]s/script > %[1]s/output 2>&1; echo $? > %[1]s/rc' >/dev/null 2>&1 &", dir),
	}, " && ")

	_, err := e.runner.ExecuteWithInput(ctx, inv.InstanceAddr, command, inv.Script)
	if err != nil {
		return fmt.Errorf("failed to submit script: %w", err)
	}
	return nil
}

// poll reads invocation state at the configured interval until terminal.
func (e *Executor) poll(ctx context.Context, inv *Invocation, timeout time.Duration) (*Invocation, error) {
	dir := fmt.Sprintf("%s/%s", stateDir, inv.ID)
	probe := fmt.Sprintf("if [ -f %[1]s/rc ]; then echo \"rc=$(cat %[1]s/rc)\"; else echo running; fi; cat %[1]s/output 2>/dev/null", dir)

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := e.timeouts.PollInterval
	attempts := int(timeout/interval) + 1

	var rc int
	err := retry.WithExponentialBackoff(pollCtx, func() error {
		out, execErr := e.runner.Execute(pollCtx, inv.InstanceAddr, probe)
		if execErr != nil {
			return execErr
		}

		status, output, parseErr := parseProbe(out)
		if parseErr != nil {
			return parseErr
		}
		inv.Output = output
		if status < 0 {
			return fmt.Errorf("invocation %s still running", inv.ID)
		}
		rc = status
		return nil
	},
		retry.WithMaxRetries(attempts),
		retry.WithInitialDelay(interval),
		retry.WithMultiplier(1.0),
	)

	if err != nil {
		if pollCtx.Err() != nil {
			inv.Status = StatusTimeout
			return inv, &CommandTimeoutError{Invocation: inv, Timeout: timeout}
		}
		inv.Status = StatusFailed
		return inv, &CommandFailedError{Invocation: inv, Cause: err}
	}

	if rc != 0 {
		inv.Status = StatusFailed
		return inv, &CommandFailedError{Invocation: inv, Cause: fmt.Errorf("script exited with code %d", rc)}
	}

	inv.Status = StatusSuccess
	return inv, nil
}

// parseProbe splits a probe response into (exit code, output). An exit code
// of -1 means the script is still running.
func parseProbe(out string) (int, string, error) {
	head, rest, _ := strings.Cut(out, "\n")
	head = strings.TrimSpace(head)

	if head == "running" {
		return -1, rest, nil
	}
	if code, ok := strings.CutPrefix(head, "rc="); ok {
		var rc int
		if _, err := fmt.Sscanf(code, "%d", &rc); err != nil {
			return 0, rest, fmt.Errorf("unparseable exit code %q", code)
		}
		return rc, rest, nil
	}
	return 0, rest, fmt.Errorf("unexpected probe response %q", head)
}
