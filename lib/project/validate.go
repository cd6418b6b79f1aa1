// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/ncc/lib/artifact"
)

// Validate checks the project and returns a *artifact.ConfigurationError
// naming the first offending property, or nil.
//
// Checks, in order:
//   - project.compiler.extension is set
//   - assembly fields (see [artifact.Assembly.Validate])
//   - build.source_path is a relative path inside the project
//   - build.compression is zstd, lz4, none, or empty
//   - exclude patterns are well-formed
//   - configurations have unique names and an output path
//   - build.default_configuration names a configuration
//   - dependencies are named
//   - execution policies have unique names, a known runner, and a target
//   - build.main and every exit handler "run" name a declared policy
func (p *Project) Validate() error {
	if p.Project.Compiler.Extension == "" {
		return artifact.Configurationf("project.compiler.extension", "must not be empty")
	}

	if err := p.Assembly.Validate("assembly"); err != nil {
		return err
	}

	if err := validateRelative("build.source_path", p.Build.SourcePath); err != nil {
		return err
	}
	if p.Build.Compression != "" {
		if _, err := artifact.ParseCompressionTag(p.Build.Compression); err != nil {
			return artifact.Configurationf("build.compression", "%v", err)
		}
	}
	if err := validatePatterns("build.exclude_files", p.Build.ExcludeFiles); err != nil {
		return err
	}
	if err := validateDependencies("build.dependencies", p.Build.Dependencies); err != nil {
		return err
	}

	names := make(map[string]int, len(p.Build.Configurations))
	for index, configuration := range p.Build.Configurations {
		prefix := fmt.Sprintf("build.configurations[%d]", index)
		if configuration.Name == "" {
			return artifact.Configurationf(prefix+".name", "must not be empty")
		}
		if first, exists := names[configuration.Name]; exists {
			return artifact.Configurationf(prefix+".name", "duplicate configuration %q (first used at build.configurations[%d])", configuration.Name, first)
		}
		names[configuration.Name] = index

		if configuration.OutputPath == "" {
			return artifact.Configurationf(prefix+".output_path", "must not be empty")
		}
		if err := validatePatterns(prefix+".exclude_files", configuration.ExcludeFiles); err != nil {
			return err
		}
		if err := validateDependencies(prefix+".dependencies", configuration.Dependencies); err != nil {
			return err
		}
	}

	if p.Build.DefaultConfiguration != "" {
		if _, exists := names[p.Build.DefaultConfiguration]; !exists {
			return artifact.Configurationf("build.default_configuration", "configuration %q is not defined", p.Build.DefaultConfiguration)
		}
	}

	return p.validatePolicies()
}

func (p *Project) validatePolicies() error {
	names := make(map[string]int, len(p.ExecutionPolicies))
	for index, policy := range p.ExecutionPolicies {
		prefix := fmt.Sprintf("execution_policies[%d]", index)
		if policy.Name == "" {
			return artifact.Configurationf(prefix+".name", "must not be empty")
		}
		if strings.ContainsAny(policy.Name, `/\`) || policy.Name == "." || policy.Name == ".." {
			return artifact.Configurationf(prefix+".name", "%q is not a valid file name", policy.Name)
		}
		if first, exists := names[policy.Name]; exists {
			return artifact.Configurationf(prefix+".name", "duplicate policy %q (first used at execution_policies[%d])", policy.Name, first)
		}
		names[policy.Name] = index

		if _, err := artifact.ParseRunner(string(policy.Runner)); err != nil {
			return artifact.Configurationf(prefix+".runner", "%v", err)
		}
		if err := validateRelative(prefix+".execute.target", policy.Execute.Target); err != nil {
			return err
		}
	}

	if p.Build.Main != "" {
		if _, exists := names[p.Build.Main]; !exists {
			return artifact.Configurationf("build.main", "execution policy %q is not defined", p.Build.Main)
		}
	}

	for index, policy := range p.ExecutionPolicies {
		if policy.ExitHandlers == nil {
			continue
		}
		handles := []struct {
			name   string
			handle *artifact.ExitHandle
		}{
			{"success", policy.ExitHandlers.Success},
			{"warning", policy.ExitHandlers.Warning},
			{"error", policy.ExitHandlers.Error},
		}
		for _, entry := range handles {
			if entry.handle == nil || entry.handle.Run == "" {
				continue
			}
			if _, exists := names[entry.handle.Run]; !exists {
				property := fmt.Sprintf("execution_policies[%d].exit_handlers.%s.run", index, entry.name)
				return artifact.Configurationf(property, "execution policy %q is not defined", entry.handle.Run)
			}
		}
	}
	return nil
}

func validateRelative(property, value string) error {
	if value == "" {
		return artifact.Configurationf(property, "must not be empty")
	}
	if filepath.IsAbs(value) {
		return artifact.Configurationf(property, "%q must be relative to the project directory", value)
	}
	cleaned := filepath.Clean(value)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return artifact.Configurationf(property, "%q escapes the project directory", value)
	}
	return nil
}

func validatePatterns(property string, patterns []string) error {
	for index, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return artifact.Configurationf(fmt.Sprintf("%s[%d]", property, index), "invalid pattern %q: %v", pattern, err)
		}
	}
	return nil
}

func validateDependencies(property string, dependencies []Dependency) error {
	for index, dependency := range dependencies {
		if dependency.Name == "" {
			return artifact.Configurationf(fmt.Sprintf("%s[%d].name", property, index), "must not be empty")
		}
	}
	return nil
}
