// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/installer"
	"github.com/bureau-foundation/ncc/lib/manager"
)

// IO is where commands write. Root uses the process's streams; tests
// substitute buffers.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Environment holds the flags shared by every command that touches the
// system configuration. Implements [cli.FlagBinder] so the --system-config
// default can come from NCC_CONFIG.
//
// Exported so that the embedded field is visible to reflection in
// [cli.FlagsFromParams].
type Environment struct {
	ConfigPath string
	Verbose    bool
}

// AddFlags registers --system-config and --verbose.
func (e *Environment) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&e.ConfigPath, "system-config", os.Getenv("NCC_CONFIG"),
		"system configuration file (default $NCC_CONFIG, else built-in defaults)")
	flagSet.BoolVar(&e.Verbose, "verbose", false, "log per-file detail")
}

func (e *Environment) config() (*config.Config, error) {
	if e.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(e.ConfigPath)
}

func (e *Environment) logger(streams IO, command string) *slog.Logger {
	level := slog.LevelInfo
	if e.Verbose {
		level = slog.LevelDebug
	}
	return cli.NewLogger(streams.Stderr, level).With("command", command)
}

// open loads the configuration and returns a manager whose execution
// output goes to streams.
func (e *Environment) open(streams IO, command string, progress installer.Progress) (*manager.Manager, *slog.Logger, error) {
	logger := e.logger(streams, command)
	cfg, err := e.config()
	if err != nil {
		return nil, nil, err
	}
	m := manager.New(manager.Options{
		Config:   cfg,
		Logger:   logger,
		Progress: progress,
		Stdout:   streams.Stdout,
		Stderr:   streams.Stderr,
	})
	return m, logger, nil
}

// signalContext is canceled on SIGINT or SIGTERM, so an interrupted
// install stops between entities and exec forwards the cancellation to
// the child process.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
