// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/binhash"
	"github.com/bureau-foundation/ncc/lib/version"
)

// Root builds the complete ncc command tree writing to the process's
// stdout and stderr.
func Root() *cli.Command {
	return NewRoot(IO{Stdout: os.Stdout, Stderr: os.Stderr})
}

// NewRoot builds the command tree writing to streams.
func NewRoot(streams IO) *cli.Command {
	return &cli.Command{
		Name: "ncc",
		Description: `ncc: package compiler and installer.

Compile a project into a single checksummed package artifact, install
artifacts into the system package root, and run their execution
policies.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			buildCommand(streams),
			installCommand(streams),
			uninstallCommand(streams),
			listCommand(streams),
			inspectCommand(streams),
			execCommand(streams),
			projectCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(streams.Stdout, "ncc %s\n", version.Full())
					if digest, path, err := binhash.SelfDigest(); err == nil {
						fmt.Fprintf(streams.Stdout, "  Binary: %s\n  BLAKE3: %s\n", path, binhash.FormatDigest(digest))
					}
					return nil
				},
			},
		},
	}
}

// requireArgs returns a validation error unless args has exactly count
// entries. what names them for the message.
func requireArgs(args []string, count int, what string) error {
	switch {
	case len(args) < count:
		return cli.Validation("missing %s", what)
	case len(args) > count:
		return cli.Validation("unexpected arguments: %v", args[count:])
	}
	return nil
}
