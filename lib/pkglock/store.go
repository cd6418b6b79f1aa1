// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pkglock

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/clock"
	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/fsutil"
)

// FileMode is the permission of the saved store file.
const FileMode = 0744

// KeyTable holds the bytecode keys of the lock's field names.
var KeyTable = codec.MustKeysOf(Lock{})

// Store reads and writes a lock file.
type Store struct {
	// Path is the lock store file.
	Path string
	// Scope gates Save: only ScopeSystem may write.
	Scope  config.Scope
	Logger *slog.Logger
	Clock  clock.Clock
}

// NewStore returns a store for path with the process's detected scope.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{Path: path, Scope: config.DetectScope(), Logger: logger}
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Load decodes the store file. A missing file is ErrLockUnavailable;
// an unreadable or corrupted one is ErrIO or ErrDecode.
func (s *Store) Load() (*Lock, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", artifact.ErrLockUnavailable, s.Path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", artifact.ErrIO, s.Path, err)
	}

	lock := New()
	if err := codec.UnmarshalCompact(data, lock, KeyTable); err != nil {
		return nil, fmt.Errorf("%w: package lock %s: %v", artifact.ErrDecode, s.Path, err)
	}
	if lock.Packages == nil {
		lock.Packages = make(map[string]*Entry)
	}
	return lock, nil
}

// LoadOrEmpty is Load that never fails: a missing or corrupted store
// yields an empty lock.
func (s *Store) LoadOrEmpty() *Lock {
	lock, err := s.Load()
	if err != nil {
		if !errors.Is(err, artifact.ErrLockUnavailable) {
			s.logger().Warn("package lock unreadable, starting empty", "path", s.Path, "error", err)
		}
		return New()
	}
	return lock
}

// Save writes lock to the store file. It requires system scope, holds
// an exclusive flock on {Path}.lock while writing, and replaces the
// file atomically.
func (s *Store) Save(lock *Lock) error {
	if s.Scope != config.ScopeSystem {
		return fmt.Errorf("%w: writing the package lock requires system scope (running as %s)", artifact.ErrAccessDenied, s.Scope)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", artifact.ErrIO, filepath.Dir(s.Path), err)
	}
	unlock, err := lockFile(s.Path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	lock.PackageLockVersion = FormatVersion
	lock.LastUpdatedTimestamp = clock.OrReal(s.Clock).Now().Unix()

	data, err := codec.MarshalCompact(lock, KeyTable)
	if err != nil {
		return fmt.Errorf("encoding package lock: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.Path, data, FileMode); err != nil {
		return fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, s.Path, err)
	}

	s.logger().Debug("package lock saved", "path", s.Path, "packages", len(lock.Packages))
	return nil
}

// lockFile takes an exclusive advisory lock on path, creating it if
// needed, and returns the release function.
func lockFile(path string) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", artifact.ErrIO, path, err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: locking %s: %v", artifact.ErrIO, path, err)
	}
	return func() {
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
	}, nil
}
