// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/project"
)

func projectCommand(streams IO) *cli.Command {
	return &cli.Command{
		Name:    "project",
		Summary: "Create and manage project files",
		Subcommands: []*cli.Command{
			projectInitCommand(streams),
		},
	}
}

type projectInitParams struct {
	cli.JSONOutput
	Name    string `json:"name"    flag:"name"    desc:"human-readable assembly name (required)"`
	Package string `json:"package" flag:"package" desc:"reverse-domain package id, e.g. com.example.app (required)"`
	Path    string `json:"path"    flag:"path,p"  desc:"project directory" default:"."`
	UseJSON bool   `json:"use_json" flag:"use-json" desc:"write project.json instead of project.yaml"`
}

type projectInitResult struct {
	ProjectFile string `json:"project_file"`
	Package     string `json:"package"`
	UUID        string `json:"uuid"`
}

func projectInitCommand(streams IO) *cli.Command {
	var params projectInitParams

	return &cli.Command{
		Name:    "init",
		Summary: "Scaffold a new project",
		Description: `Write a project file and a src/main.php entry point.

The project gets a fresh assembly UUID, release and debug build
configurations, and a "main" execution policy. An existing project
file is never overwritten.`,
		Usage: "ncc project init --name <name> --package <id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Start a project in a new directory",
				Command:     "ncc project init --name \"Example App\" --package com.example.app --path example-app",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("init", &params)
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, ""); err != nil {
				return err
			}
			if params.Name == "" || params.Package == "" {
				return cli.Validation("--name and --package are required")
			}
			if err := os.MkdirAll(params.Path, 0755); err != nil {
				return err
			}

			created, projectPath, err := project.Init(params.Path, params.Name, params.Package, params.UseJSON)
			if err != nil {
				return err
			}

			result := projectInitResult{
				ProjectFile: projectPath,
				Package:     created.Assembly.Package,
				UUID:        created.Assembly.UUID,
			}
			if done, err := params.EmitJSON(streams.Stdout, result); done {
				return err
			}
			fmt.Fprintf(streams.Stdout, "created %s for %s\n", result.ProjectFile, result.Package)
			return nil
		},
	}
}
