// Package system provides the read-only view of the ambient environment the
// reconciler runs against: operating system, home directory, PATH lookup, and
// a filesystem handle. Everything that would otherwise be an ad-hoc
// runtime.GOOS or os.Stat call lives here so tests can substitute doubles.
package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// PreconditionError indicates the environment fails a hard requirement
// (wrong operating system, no resolvable home directory). It aborts the run
// before any mutation.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// Context is an immutable snapshot of the environment. It is built once at
// startup and passed down; nothing mutates it during a run.
type Context struct {
	// GOOS is the running operating system ("darwin" on the target).
	GOOS string
	// Home is the current user's home directory.
	Home string
	// Fs is the filesystem used for presence markers, the tool-versions
	// file, and font installs.
	Fs afero.Fs
	// LookPath resolves an executable on the search path.
	LookPath func(name string) (string, error)
}

// Current captures the real process environment.
func Current() (*Context, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return &Context{
		GOOS:     runtime.GOOS,
		Home:     home,
		Fs:       afero.NewOsFs(),
		LookPath: exec.LookPath,
	}, nil
}

// Verify enforces the run preconditions. It must be called before any
// install action; a failure here means zero entries are attempted.
func (c *Context) Verify() error {
	if c.GOOS != "darwin" {
		return &PreconditionError{Reason: fmt.Sprintf("this tool provisions macOS workstations, refusing to run on %q", c.GOOS)}
	}
	if c.Home == "" {
		return &PreconditionError{Reason: "home directory is not set"}
	}
	return nil
}

// FontsDir is the per-user font directory fonts get installed into.
func (c *Context) FontsDir() string {
	return filepath.Join(c.Home, "Library", "Fonts")
}

// ToolVersionsPath is the default location of the version-declaration file.
func (c *Context) ToolVersionsPath() string {
	return filepath.Join(c.Home, ".tool-versions")
}
