// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "ncc",
		Subcommands: []*Command{
			{
				Name: "build",
				Run: func(args []string) error {
					called = "build"
					return nil
				},
			},
			{
				Name: "install",
				Run: func(args []string) error {
					called = "install"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"install"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "install" {
		t.Errorf("dispatched to %q, want %q", called, "install")
	}
}

func TestCommand_Execute_NestedWithFlags(t *testing.T) {
	var params struct {
		Name string `flag:"name" desc:"project name"`
	}
	var receivedArgs []string

	root := &Command{
		Name: "ncc",
		Subcommands: []*Command{
			{
				Name: "project",
				Subcommands: []*Command{
					{
						Name: "init",
						Flags: func() *pflag.FlagSet {
							return FlagsFromParams("init", &params)
						},
						Run: func(args []string) error {
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"project", "init", "--name", "Demo", "here"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Name != "Demo" {
		t.Errorf("Name = %q, want %q", params.Name, "Demo")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "here" {
		t.Errorf("args = %v, want [here]", receivedArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "ncc",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "install", Run: func([]string) error { return nil }},
			{Name: "uninstall", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"instal"})
	if err == nil {
		t.Fatal("Execute() succeeded, want error")
	}
	if !strings.Contains(err.Error(), `did you mean "install"`) {
		t.Errorf("error = %q, want install suggestion", err)
	}
	if Categorize(err) != CategoryValidation {
		t.Errorf("category = %q, want %q", Categorize(err), CategoryValidation)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	var params struct {
		Version string `flag:"version" desc:"version to remove"`
	}
	command := &Command{
		Name: "uninstall",
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("uninstall", &params)
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--verison", "1.0.0"})
	if err == nil {
		t.Fatal("Execute() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "did you mean --version?") {
		t.Errorf("error = %q, want --version suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "project",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "init", Summary: "Create a project"}},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("Execute() error = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "init") {
		t.Errorf("help output missing subcommand listing:\n%s", help.String())
	}
}

func TestCommand_Execute_HelpFlagAfterArgs(t *testing.T) {
	var help bytes.Buffer
	ran := false
	command := &Command{
		Name:       "inspect",
		Summary:    "Describe a package artifact",
		HelpOutput: &help,
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("inspect", pflag.ContinueOnError)
		},
		Run: func([]string) error {
			ran = true
			return nil
		},
	}

	if err := command.Execute([]string{"app.ncc", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ran {
		t.Error("Run was called for --help")
	}
	if !strings.Contains(help.String(), "Describe a package artifact") {
		t.Errorf("help output = %q, want summary", help.String())
	}
}

func TestCommand_Execute_PropagatesRunError(t *testing.T) {
	want := errors.New("boom")
	command := &Command{Name: "build", Run: func([]string) error { return want }}
	if err := command.Execute(nil); !errors.Is(err, want) {
		t.Errorf("Execute() error = %v, want %v", err, want)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var params struct {
		Path string `flag:"path,p" desc:"project directory" default:"."`
	}
	root := &Command{Name: "ncc"}
	build := &Command{
		Name:        "build",
		Description: "Compile a project into a package artifact.",
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("build", &params)
		},
		Examples: []Example{{Description: "Build the release configuration", Command: "ncc build --configuration release"}},
		parent:   root,
	}

	var out bytes.Buffer
	build.PrintHelp(&out)
	help := out.String()

	for _, want := range []string{
		"Compile a project into a package artifact.",
		"Usage:\n  ncc build [flags]",
		"--path",
		"# Build the release configuration",
		"ncc build --configuration release",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}
