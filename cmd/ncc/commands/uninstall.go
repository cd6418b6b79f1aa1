// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
)

type uninstallParams struct {
	Environment
	Version string `json:"version" flag:"version" desc:"remove only this version (default: every version)"`
}

func uninstallCommand(streams IO) *cli.Command {
	var params uninstallParams

	return &cli.Command{
		Name:    "uninstall",
		Summary: "Remove an installed package",
		Description: `Remove an installed package, or one version of it.

The installation directory is deleted once no versions remain. Archived
artifacts of the removed versions are deleted from the cache.`,
		Usage: "ncc uninstall <package> [flags]",
		Examples: []cli.Example{
			{
				Description: "Remove one version",
				Command:     "sudo ncc uninstall com.example.app --version 1.0.0",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("uninstall", &params)
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "package name"); err != nil {
				return err
			}
			m, logger, err := params.open(streams, "uninstall", nil)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			if err := m.Uninstall(ctx, args[0], params.Version); err != nil {
				return err
			}
			logger.Info("package removed", "package", args[0], "version", params.Version)

			if params.Version == "" {
				fmt.Fprintf(streams.Stdout, "removed %s\n", args[0])
			} else {
				fmt.Fprintf(streams.Stdout, "removed %s %s\n", args[0], params.Version)
			}
			return nil
		},
	}
}
