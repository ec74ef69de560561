// Package main is the entry point for the dkimctl CLI.
//
// dkimctl provisions OpenDKIM on a mail host: it installs the packages,
// renders the configuration, generates the signing key once and keeps the
// service running. Every step is idempotent, so repeated runs converge.
//
// Commands: apply, render, facts, version, completion.
//
// For detailed usage information, run:
//
//	dkimctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/dkimctl/cmd/dkimctl/commands"
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
