// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/base64"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/phpast"
)

type inspectParams struct {
	cli.JSONOutput
	Source string `json:"source" flag:"source" desc:"print the reconstructed source of this component"`
	Color  string `json:"color"  flag:"color"  desc:"highlight --source output: auto, always, or never" default:"auto"`
}

type inspectSummary struct {
	Assembly            artifact.Assembly          `json:"assembly"`
	Compiler            artifact.CompilerExtension `json:"compiler"`
	MainExecutionPolicy string                     `json:"main_execution_policy,omitempty"`
	Dependencies        []artifact.Dependency      `json:"dependencies"`
	Components          []entitySummary            `json:"components"`
	Resources           []entitySummary            `json:"resources"`
	ExecutionUnits      []entitySummary            `json:"execution_units"`
}

type entitySummary struct {
	Name string `json:"name"`
	// Kind is the component data type or the unit's runner.
	Kind       string `json:"kind,omitempty"`
	ChecksumOK bool   `json:"checksum_ok"`
}

func inspectCommand(streams IO) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Describe a package artifact",
		Description: `Decode a package artifact and describe its contents: the assembly,
compiler extension, dependencies, and every component, resource, and
execution unit with the result of its checksum verification.

With --source, print one component's reconstructed source instead,
syntax highlighted when writing to a terminal.`,
		Usage: "ncc inspect <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Check an artifact before installing it",
				Command:     "ncc inspect build/release/com.example.app.ncc",
			},
			{
				Description: "Show how a component will be written to disk",
				Command:     "ncc inspect app.ncc --source lib/Greeter.php",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "artifact file"); err != nil {
				return err
			}
			pkg, err := artifact.Load(args[0])
			if err != nil {
				return err
			}

			if params.Source != "" {
				source, err := componentSource(pkg, params.Source)
				if err != nil {
					return err
				}
				highlight, err := params.highlight(streams.Stdout)
				if err != nil {
					return err
				}
				return writeSource(streams.Stdout, source, pkg.Header.CompilerExtension.Extension, highlight)
			}

			summary := summarize(pkg)
			if done, err := params.EmitJSON(streams.Stdout, summary); done {
				return err
			}
			printSummary(streams.Stdout, summary)
			return nil
		},
	}
}

func (p *inspectParams) highlight(w io.Writer) (bool, error) {
	switch p.Color {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return cli.IsTerminal(w), nil
	default:
		return false, cli.Validation("--color must be auto, always, or never (got %q)", p.Color)
	}
}

// componentSource returns the text the installer would write for the
// named component.
func componentSource(pkg *artifact.Package, name string) (string, error) {
	component := pkg.Component(name)
	if component == nil {
		return "", cli.NotFound("component %q not found in %s", name, pkg.Assembly.Package)
	}

	switch component.DataType {
	case artifact.DataAST:
		tree, err := phpast.FromValue(component.Data)
		if err != nil {
			return "", err
		}
		return tree.Dump(), nil
	case artifact.DataBase64:
		encoded, ok := component.Data.(string)
		if !ok {
			return "", fmt.Errorf("%w: component %s: base64 data is %T", artifact.ErrDecode, name, component.Data)
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("%w: component %s: %v", artifact.ErrDecode, name, err)
		}
		return string(decoded), nil
	default:
		text, ok := component.Data.(string)
		if !ok {
			return "", fmt.Errorf("%w: component %s: plain data is %T", artifact.ErrDecode, name, component.Data)
		}
		return text, nil
	}
}

func writeSource(w io.Writer, source, language string, highlight bool) error {
	if highlight {
		if err := quick.Highlight(w, source, language, "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := io.WriteString(w, source)
	return err
}

func summarize(pkg *artifact.Package) inspectSummary {
	summary := inspectSummary{
		Assembly:            pkg.Assembly,
		Compiler:            pkg.Header.CompilerExtension,
		MainExecutionPolicy: pkg.MainExecutionPolicy(),
		Dependencies:        pkg.Dependencies,
	}
	for i := range pkg.Components {
		component := &pkg.Components[i]
		summary.Components = append(summary.Components, entitySummary{
			Name:       component.Name,
			Kind:       string(component.DataType),
			ChecksumOK: component.ValidateChecksum(),
		})
	}
	for i := range pkg.Resources {
		resource := &pkg.Resources[i]
		summary.Resources = append(summary.Resources, entitySummary{
			Name:       resource.Name,
			ChecksumOK: resource.ValidateChecksum(),
		})
	}
	for i := range pkg.ExecutionUnits {
		unit := &pkg.ExecutionUnits[i]
		summary.ExecutionUnits = append(summary.ExecutionUnits, entitySummary{
			Name:       unit.ID,
			Kind:       string(unit.ExecutionPolicy.Runner),
			ChecksumOK: unit.ValidateChecksum(),
		})
	}
	return summary
}

func printSummary(w io.Writer, summary inspectSummary) {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Package:\t%s\n", summary.Assembly.Package)
	fmt.Fprintf(tw, "Name:\t%s\n", summary.Assembly.Name)
	fmt.Fprintf(tw, "Version:\t%s\n", summary.Assembly.Version)
	fmt.Fprintf(tw, "UUID:\t%s\n", summary.Assembly.UUID)
	if summary.Assembly.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", summary.Assembly.Description)
	}
	fmt.Fprintf(tw, "Compiler:\t%s\n", compilerLabel(summary.Compiler))
	if summary.MainExecutionPolicy != "" {
		fmt.Fprintf(tw, "Main policy:\t%s\n", summary.MainExecutionPolicy)
	}
	tw.Flush()

	if len(summary.Dependencies) > 0 {
		fmt.Fprintf(w, "\nDependencies:\n")
		for _, dependency := range summary.Dependencies {
			fmt.Fprintf(w, "  %s %s (%s)\n", dependency.Name, dependency.Version, dependency.SourceType)
		}
	}
	printEntities(w, "Components", summary.Components)
	printEntities(w, "Resources", summary.Resources)
	printEntities(w, "Execution units", summary.ExecutionUnits)
}

func printEntities(w io.Writer, title string, entities []entitySummary) {
	if len(entities) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for _, entity := range entities {
		status := "ok"
		if !entity.ChecksumOK {
			status = "CHECKSUM MISMATCH"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", entity.Name, entity.Kind, status)
	}
	tw.Flush()
}
