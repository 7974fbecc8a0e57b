// Package main is the entry point for the warmpool CLI.
//
// warmpool manages a warm pool of pre-initialized compute instances and the
// per-tenant routing in front of them. It can replenish the pool, assign
// instances to tenants, provision full tenant environments (instance plus
// load-balancer route), tear them down, and rotate workload credentials
// in place.
//
// For detailed usage information, run:
//
//	warmpool --help
package main

import (
	"fmt"
	"os"

	"github.com/hostbay/warmpool/cmd/warmpool/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
