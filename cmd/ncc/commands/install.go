// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/installer"
)

type installParams struct {
	Environment
	cli.JSONOutput
	Quiet bool `json:"quiet" flag:"quiet,q" desc:"do not draw a progress bar"`
}

type installResult struct {
	Package  string   `json:"package"`
	Version  string   `json:"version"`
	Location string   `json:"location"`
	Artifact string   `json:"artifact,omitempty"`
	Units    []string `json:"execution_units"`
}

func installCommand(streams IO) *cli.Command {
	var params installParams

	return &cli.Command{
		Name:    "install",
		Summary: "Install a package artifact",
		Description: `Install a package artifact into the system package root.

Every component, resource, and execution unit is checksum-verified
before it is written. The installed version is recorded in the package
lock, and a copy of the artifact is archived in the cache directory so
later builds can link against it statically.

Installing requires system scope (run as root). A failed install is
not rolled back; reinstalling the same artifact replaces the files.`,
		Usage: "ncc install <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Install a freshly built package",
				Command:     "sudo ncc install build/release/com.example.app.ncc",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("install", &params)
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "artifact file"); err != nil {
				return err
			}

			logger := params.logger(streams, "install")
			var reporter installer.Progress = logProgress{logger: logger}
			if !params.Quiet && !params.OutputJSON && cli.IsTerminal(streams.Stderr) {
				reporter = newProgressBar(streams.Stderr)
			}
			m, logger, err := params.open(streams, "install", reporter)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			installed, err := m.Install(ctx, args[0])
			if err != nil {
				return err
			}

			result := installResult{
				Package:  installed.Package.Assembly.Package,
				Version:  installed.Package.Assembly.Version,
				Location: installed.Paths.Installation,
				Artifact: installed.Artifact,
			}
			for name := range installed.Units {
				result.Units = append(result.Units, name)
			}
			sort.Strings(result.Units)
			logger.Info("package installed", "package", result.Package, "version", result.Version)

			if done, err := params.EmitJSON(streams.Stdout, result); done {
				return err
			}
			fmt.Fprintf(streams.Stdout, "installed %s %s to %s\n", result.Package, result.Version, result.Location)
			return nil
		},
	}
}
