// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/cmd/ncc/commands"
)

func main() {
	if err := run(); err != nil {
		// exec passes the policy's exit code through an ExitError; the
		// policy has already printed whatever it had to say.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.Categorize(err).ExitCode())
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
