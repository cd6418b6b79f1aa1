// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
)

type execParams struct {
	Environment
	Version string `json:"version" flag:"version" desc:"installed version to run (default: latest)"`
	Policy  string `json:"policy"  flag:"policy"  desc:"execution policy to run (default: the package's main policy)"`
}

func execCommand(streams IO) *cli.Command {
	var params execParams

	return &cli.Command{
		Name:    "exec",
		Summary: "Run an installed package's execution policy",
		Description: `Run an execution policy of an installed package.

The policy's process runs with the package's runtime constants
resolved. When it exits, the policy's exit handlers may print a message,
chain to another policy, or end the run with a fixed exit code. ncc
exits with the final code.

Arguments after "--" are appended to the first process's command line.`,
		Usage: "ncc exec <package> [flags] [-- args...]",
		Examples: []cli.Example{
			{
				Description: "Run the main policy of the latest version",
				Command:     "ncc exec com.example.app",
			},
			{
				Description: "Run a named policy with arguments",
				Command:     "ncc exec com.example.app --policy migrate -- --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("exec", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("missing package name")
			}
			m, _, err := params.open(streams, "exec", nil)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			code, err := m.Execute(ctx, args[0], params.Version, params.Policy, args[1:])
			if err != nil {
				return err
			}
			if code != 0 {
				return &cli.ExitError{Code: code}
			}
			return nil
		},
	}
}
