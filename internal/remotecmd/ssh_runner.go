package remotecmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hostbay/warmpool/internal/config"
	"github.com/hostbay/warmpool/internal/platform/ssh"
)

// SSHRunner is the SSH-backed Runner. Pool instances are ephemeral and share
// one operator key, so the runner holds the key and dials per call.
type SSHRunner struct {
	user       string
	privateKey []byte
}

// NewSSHRunner loads the operator private key and returns a runner.
func NewSSHRunner(cfg config.RemoteExecConfig) (*SSHRunner, error) {
	key, err := os.ReadFile(cfg.PrivateKeyFile) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read remote exec key: %w", err)
	}
	return &SSHRunner{user: cfg.User, privateKey: key}, nil
}

// Execute runs a command on the instance at addr.
func (r *SSHRunner) Execute(ctx context.Context, addr, command string) (string, error) {
	return r.ExecuteWithInput(ctx, addr, command, "")
}

// ExecuteWithInput runs a command with the given stdin on the instance at addr.
func (r *SSHRunner) ExecuteWithInput(ctx context.Context, addr, command, input string) (string, error) {
	client, err := ssh.NewClient(&ssh.Config{
		Host:       addr,
		User:       r.user,
		PrivateKey: r.privateKey,
	})
	if err != nil {
		return "", err
	}
	return client.ExecuteWithInput(ctx, command, input)
}

var _ Runner = (*SSHRunner)(nil)
