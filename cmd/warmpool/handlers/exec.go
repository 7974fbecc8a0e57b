package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hostbay/warmpool/internal/remotecmd"
)

// readScriptFile reads the script to run (for testing injection).
var readScriptFile = os.ReadFile

// Exec runs a script on a pool instance and prints the captured output. The
// script's output is printed even when it fails or times out; partial output
// is usually the most useful thing an operator has at that point.
func Exec(ctx context.Context, configPath, instanceAddr, scriptFile string, timeout time.Duration) error {
	svc, err := buildServices(configPath)
	if err != nil {
		return err
	}

	script, err := readScriptFile(scriptFile)
	if err != nil {
		return fmt.Errorf("failed to read script %s: %w", scriptFile, err)
	}

	inv, err := svc.executor.RunRemoteScript(ctx, instanceAddr, string(script), timeout)
	if inv != nil && inv.Output != "" {
		fmt.Print(inv.Output)
	}
	if err != nil {
		if remotecmd.IsTimeout(err) {
			return fmt.Errorf("script on %s did not finish in time: %w", instanceAddr, err)
		}
		return err
	}

	fmt.Printf("Script finished on %s (invocation %s)\n", instanceAddr, inv.ID)
	return nil
}
