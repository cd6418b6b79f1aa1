// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package constants

import (
	"time"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/config"
)

// Substituter applies every token family it has context for. Nil
// fields disable their family.
type Substituter struct {
	// Portable is the compile direction of the install family: its
	// concrete paths are replaced by install tokens before any other
	// family runs.
	Portable *config.InstallationPaths

	Assembly *artifact.Assembly
	Build    *BuildInfo
	Time     *time.Time
	Paths    *config.InstallationPaths
	Runtime  *RuntimeInfo
}

// Apply runs the enabled families over s in the order Assembly, Build,
// DateTime, Install, Runtime, after tokenizing Portable paths.
func (sub *Substituter) Apply(s string) string {
	if sub.Portable != nil {
		s = InstallPathsToTokens(s, *sub.Portable)
	}
	if sub.Assembly != nil {
		s = Assembly(s, sub.Assembly)
	}
	if sub.Build != nil {
		s = Build(s, *sub.Build)
	}
	if sub.Time != nil {
		s = DateTime(s, *sub.Time)
	}
	if sub.Paths != nil {
		s = InstallTokens(s, *sub.Paths)
	}
	if sub.Runtime != nil {
		s = Runtime(s, *sub.Runtime)
	}
	return s
}

// ApplyNullable is Apply for optional values: nil stays nil.
func (sub *Substituter) ApplyNullable(s *string) *string {
	if s == nil {
		return nil
	}
	result := sub.Apply(*s)
	return &result
}

// ApplyValue substitutes every string reachable inside a free-form
// option value (scalars, []any, map[string]any), returning the
// rewritten value. Non-string scalars are returned unchanged.
func (sub *Substituter) ApplyValue(value any) any {
	switch typed := value.(type) {
	case string:
		return sub.Apply(typed)
	case []any:
		result := make([]any, len(typed))
		for i, element := range typed {
			result[i] = sub.ApplyValue(element)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(typed))
		for key, element := range typed {
			result[key] = sub.ApplyValue(element)
		}
		return result
	default:
		return value
	}
}

// ApplyPackage rewrites pkg in place: assembly fields, header options
// and runtime constants, and the string fields of every execution
// policy.
//
// Assembly tokens inside assembly fields resolve against the assembly
// as it was before this call, so a description may reference
// %ASSEMBLY.VERSION% regardless of field order.
func (sub *Substituter) ApplyPackage(pkg *artifact.Package) {
	original := pkg.Assembly
	scoped := *sub
	if scoped.Assembly != nil {
		scoped.Assembly = &original
	}

	assembly := &pkg.Assembly
	for _, field := range []*string{
		&assembly.Name,
		&assembly.Package,
		&assembly.Description,
		&assembly.Company,
		&assembly.Product,
		&assembly.Copyright,
		&assembly.Trademark,
		&assembly.Version,
		&assembly.UUID,
	} {
		*field = scoped.Apply(*field)
	}

	for key, value := range pkg.Header.Options {
		pkg.Header.Options[key] = scoped.ApplyValue(value)
	}
	for key, value := range pkg.Header.RuntimeConstants {
		pkg.Header.RuntimeConstants[key] = scoped.Apply(value)
	}

	for i := range pkg.ExecutionUnits {
		scoped.ApplyPolicy(&pkg.ExecutionUnits[i].ExecutionPolicy)
	}
}

// ApplyPolicy rewrites the message, exit-handler messages, execute
// target and working directory, options, and environment of policy.
func (sub *Substituter) ApplyPolicy(policy *artifact.ExecutionPolicy) {
	policy.Message = sub.Apply(policy.Message)

	if policy.ExitHandlers != nil {
		for _, handle := range []*artifact.ExitHandle{
			policy.ExitHandlers.Success,
			policy.ExitHandlers.Warning,
			policy.ExitHandlers.Error,
		} {
			if handle != nil {
				handle.Message = sub.Apply(handle.Message)
			}
		}
	}

	execute := &policy.Execute
	execute.Target = sub.Apply(execute.Target)
	execute.WorkingDirectory = sub.Apply(execute.WorkingDirectory)
	for i, option := range execute.Options {
		execute.Options[i] = sub.Apply(option)
	}
	if len(execute.EnvironmentVariables) > 0 {
		environment := make(map[string]string, len(execute.EnvironmentVariables))
		for key, value := range execute.EnvironmentVariables {
			environment[sub.Apply(key)] = sub.Apply(value)
		}
		execute.EnvironmentVariables = environment
	}
}
