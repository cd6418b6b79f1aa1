// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/pkglock"
)

type listParams struct {
	Environment
	cli.JSONOutput
}

func listCommand(streams IO) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List installed packages",
		Description: `List the packages recorded in the package lock, with their
installed versions. The last version listed is the one "latest"
resolves to.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, ""); err != nil {
				return err
			}
			m, _, err := params.open(streams, "list", nil)
			if err != nil {
				return err
			}

			entries := m.List()
			if done, err := params.EmitJSON(streams.Stdout, entries); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(streams.Stdout, "no packages installed")
				return nil
			}
			fmt.Fprintln(streams.Stdout, renderPackageTable(lipgloss.NewRenderer(streams.Stdout), entries))
			return nil
		},
	}
}

// renderPackageTable lays entries out as a bordered table. Colors are
// applied only when the renderer's output supports them.
func renderPackageTable(renderer *lipgloss.Renderer, entries []*pkglock.Entry) string {
	header := renderer.NewStyle().Bold(true).Padding(0, 1)
	name := renderer.NewStyle().Foreground(lipgloss.Color("12")).Padding(0, 1)
	cell := renderer.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Name,
			strings.Join(entry.VersionNames(), ", "),
			compilerLabel(entry.Compiler),
			entry.MainExecutionPolicy,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(renderer.NewStyle().Faint(true)).
		Headers("PACKAGE", "VERSIONS", "COMPILER", "MAIN").
		Rows(rows...).
		StyleFunc(func(row, column int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case column == 0:
				return name
			default:
				return cell
			}
		}).
		String()
}

func compilerLabel(compiler artifact.CompilerExtension) string {
	label := compiler.Extension
	switch {
	case compiler.MinimumVersion != "" && compiler.MaximumVersion != "":
		label += fmt.Sprintf(" %s-%s", compiler.MinimumVersion, compiler.MaximumVersion)
	case compiler.MinimumVersion != "":
		label += " >=" + compiler.MinimumVersion
	case compiler.MaximumVersion != "":
		label += " <=" + compiler.MaximumVersion
	}
	return label
}
