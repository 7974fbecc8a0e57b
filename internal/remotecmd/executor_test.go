package remotecmd

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/hostbay/warmpool/internal/config"
)

// fakeRunner scripts transport behavior per test.
type fakeRunner struct {
	mu sync.Mutex

	submits []string // stdin payloads seen by ExecuteWithInput
	probes  int

	ExecuteFunc          func(ctx context.Context, addr, command string) (string, error)
	ExecuteWithInputFunc func(ctx context.Context, addr, command, input string) (string, error)
}

func (f *fakeRunner) Execute(ctx context.Context, addr, command string) (string, error) {
	f.mu.Lock()
	f.probes++
	f.mu.Unlock()
	if f.ExecuteFunc != nil {
		return f.ExecuteFunc(ctx, addr, command)
	}
	return "", nil
}

func (f *fakeRunner) ExecuteWithInput(ctx context.Context, addr, command, input string) (string, error) {
	f.mu.Lock()
	f.submits = append(f.submits, input)
	f.mu.Unlock()
	if f.ExecuteWithInputFunc != nil {
		return f.ExecuteWithInputFunc(ctx, addr, command, input)
	}
	return "", nil
}

func (f *fakeRunner) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		HealthWait:        150 * time.Millisecond,
		RemoteScript:      200 * time.Millisecond,
		PollInterval:      10 * time.Millisecond,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
	}
}

func testExecutor(runner Runner) *Executor {
	return NewExecutor(runner, testTimeouts(), logr.Discard())
}

func TestRunRemoteScript_Success(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	runner.ExecuteFunc = func(_ context.Context, _, _ string) (string, error) {
		if runner.probeCount() < 3 {
			return "running\npartial", nil
		}
		return "rc=0\nall done", nil
	}

	e := testExecutor(runner)
	inv, err := e.RunRemoteScript(context.Background(), "10.0.0.5", "echo hi", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != StatusSuccess {
		t.Errorf("expected success, got %s", inv.Status)
	}
	if inv.Output != "all done" {
		t.Errorf("unexpected output %q", inv.Output)
	}

	// the script itself travels over stdin
	if len(runner.submits) != 1 || runner.submits[0] != "echo hi" {
		t.Errorf("expected script submitted via stdin, got %v", runner.submits)
	}
}

func TestRunRemoteScript_NonZeroExit(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	runner.ExecuteFunc = func(_ context.Context, _, _ string) (string, error) {
		return "rc=2\nboom: disk full", nil
	}

	e := testExecutor(runner)
	inv, err := e.RunRemoteScript(context.Background(), "10.0.0.5", "fail", 0)
	if !IsFailed(err) {
		t.Fatalf("expected CommandFailedError, got %T: %v", err, err)
	}
	if inv.Status != StatusFailed {
		t.Errorf("expected failed, got %s", inv.Status)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error should carry captured output: %v", err)
	}
}

func TestRunRemoteScript_Timeout(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	runner.ExecuteFunc = func(_ context.Context, _, _ string) (string, error) {
		return "running\n", nil
	}

	e := testExecutor(runner)
	timeout := 100 * time.Millisecond
	start := time.Now()
	inv, err := e.RunRemoteScript(context.Background(), "10.0.0.5", "sleep forever", timeout)
	elapsed := time.Since(start)

	if !IsTimeout(err) {
		t.Fatalf("expected CommandTimeoutError, got %T: %v", err, err)
	}
	if inv.Status != StatusTimeout {
		t.Errorf("expected timeout status, got %s", inv.Status)
	}
	// bounded margin: must not hang past the configured timeout
	if elapsed > timeout+500*time.Millisecond {
		t.Errorf("timeout returned after %v, budget was %v", elapsed, timeout)
	}
}

func TestRunRemoteScript_SubmitFails(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	runner.ExecuteWithInputFunc = func(context.Context, string, string, string) (string, error) {
		return "", errors.New("connection refused")
	}

	e := testExecutor(runner)
	inv, err := e.RunRemoteScript(context.Background(), "10.0.0.5", "echo hi", 0)
	if !IsFailed(err) {
		t.Fatalf("expected CommandFailedError, got %T: %v", err, err)
	}
	if inv.Status != StatusFailed {
		t.Errorf("expected failed, got %s", inv.Status)
	}
	if runner.probeCount() != 0 {
		t.Errorf("no polling should happen after a failed submit, got %d probes", runner.probeCount())
	}
}

func TestParseProbe(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		rc      int
		output  string
		wantErr bool
	}{
		{"running\n", -1, "", false},
		{"running\nhalf the output", -1, "half the output", false},
		{"rc=0\ndone", 0, "done", false},
		{"rc=137\n", 137, "", false},
		{"rc=abc\n", 0, "", true},
		{"garbage\n", 0, "", true},
	}
	for _, c := range cases {
		rc, output, err := parseProbe(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseProbe(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseProbe(%q): unexpected error %v", c.in, err)
			continue
		}
		if rc != c.rc || output != c.output {
			t.Errorf("parseProbe(%q) = (%d, %q), want (%d, %q)", c.in, rc, output, c.rc, c.output)
		}
	}
}
