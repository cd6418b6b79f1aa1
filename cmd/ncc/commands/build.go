// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
)

type buildParams struct {
	Environment
	cli.JSONOutput
	Configuration string `json:"configuration" flag:"configuration,c" desc:"build configuration (default: the project's default_configuration)"`
	Path          string `json:"path"          flag:"path,p"          desc:"project directory" default:"."`
}

type buildResult struct {
	Package    string `json:"package"`
	Version    string `json:"version"`
	Artifact   string `json:"artifact"`
	Components int    `json:"components"`
}

func buildCommand(streams IO) *cli.Command {
	var params buildParams

	return &cli.Command{
		Name:    "build",
		Summary: "Compile a project into a package artifact",
		Description: `Compile the project in --path into a package artifact.

The project file (project.yaml or project.json) selects the compiler
extension, source directory, and build configurations. The artifact is
written to the configuration's output path as {package}.ncc, replacing
any previous build.`,
		Usage: "ncc build [flags]",
		Examples: []cli.Example{
			{
				Description: "Build the default configuration of the current directory",
				Command:     "ncc build",
			},
			{
				Description: "Build the debug configuration of another project",
				Command:     "ncc build --path ../tools --configuration debug",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("build", &params)
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, ""); err != nil {
				return err
			}
			m, logger, err := params.open(streams, "build", nil)
			if err != nil {
				return err
			}

			outputPath, pkg, err := m.Build(params.Path, params.Configuration)
			if err != nil {
				return err
			}
			logger.Debug("build complete", "package", pkg.Assembly.Package, "artifact", outputPath)

			result := buildResult{
				Package:    pkg.Assembly.Package,
				Version:    pkg.Assembly.Version,
				Artifact:   outputPath,
				Components: len(pkg.Components),
			}
			if done, err := params.EmitJSON(streams.Stdout, result); done {
				return err
			}
			fmt.Fprintf(streams.Stdout, "built %s %s: %s\n", result.Package, result.Version, result.Artifact)
			return nil
		},
	}
}
