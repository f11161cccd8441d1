package adapter

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/logger"
	"bootstrap-mac/internal/runner"
	"bootstrap-mac/internal/system"
)

// bootstrapTool describes how one standalone tool is detected and installed.
// Detection is either an executable on the search path or a marker directory
// under the user's home; installation is a fixed command line.
type bootstrapTool struct {
	// binary is looked up on PATH to detect the tool. Empty means detection
	// is by marker only.
	binary string
	// markerDir, relative to home, detects tools that install into a
	// directory rather than onto PATH (oh-my-zsh).
	markerDir string
	// bootstrap is the argv run to install the tool.
	bootstrap []string
	// network marks bootstraps that fetch over the network and therefore
	// get a bounded retry instead of a single shot.
	network bool
}

// bootstrapTools is the fixed table of tools this adapter knows how to
// bring up. Homebrew and oh-my-zsh come from their upstream install
// scripts; starship and asdf ride on brew once it exists.
var bootstrapTools = map[string]bootstrapTool{
	"homebrew": {
		binary:    "brew",
		bootstrap: []string{"/bin/bash", "-c", `curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh | NONINTERACTIVE=1 bash`},
		network:   true,
	},
	"oh-my-zsh": {
		markerDir: ".oh-my-zsh",
		bootstrap: []string{"/bin/sh", "-c", `curl -fsSL https://raw.githubusercontent.com/ohmyzsh/ohmyzsh/master/tools/install.sh | RUNZSH=no CHSH=no sh`},
		network:   true,
	},
	"starship": {
		binary:    "starship",
		bootstrap: []string{"brew", "install", "starship"},
	},
	"asdf": {
		binary:    "asdf",
		bootstrap: []string{"brew", "install", "asdf"},
	},
}

const bootstrapAttempts = 2

// bootstrapBackoff is a variable so tests do not have to wait out the delay.
var bootstrapBackoff = 3 * time.Second

// Standalone installs single-binary tools that have a dedicated bootstrap
// action instead of a plain package-manager entry.
type Standalone struct {
	sys *system.Context
	run runner.Runner
}

func NewStandalone(sys *system.Context, run runner.Runner) *Standalone {
	return &Standalone{sys: sys, run: run}
}

// CheckPresence looks for the tool's executable on the search path, or its
// marker directory when the tool does not install onto PATH.
func (s *Standalone) CheckPresence(_ context.Context, e config.Entry) (bool, error) {
	tool, ok := bootstrapTools[e.ID]
	if !ok {
		return false, &InstallError{Entry: e.Key(), Reason: "no bootstrap action known for this tool"}
	}
	if tool.binary != "" {
		if path, err := s.sys.LookPath(tool.binary); err == nil {
			logger.Debug("[DEBUG] Found %s at %s\n", tool.binary, path)
			return true, nil
		}
	}
	if tool.markerDir != "" {
		marker := filepath.Join(s.sys.Home, tool.markerDir)
		if ok, _ := afero.DirExists(s.sys.Fs, marker); ok {
			logger.Debug("[DEBUG] Found marker directory %s\n", marker)
			return true, nil
		}
	}
	return false, nil
}

// Install runs the tool's fixed bootstrap command. Network bootstraps get a
// bounded retry with backoff; the underlying tool's own retry behavior is
// never relied on.
func (s *Standalone) Install(ctx context.Context, e config.Entry) error {
	tool, ok := bootstrapTools[e.ID]
	if !ok {
		return &InstallError{Entry: e.Key(), Reason: "no bootstrap action known for this tool"}
	}

	attempts := 1
	if tool.network {
		attempts = bootstrapAttempts
	}

	var output []byte
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			logger.Warn("[WARN] Bootstrap of %s failed, retrying in %s...\n", e.ID, bootstrapBackoff)
			select {
			case <-ctx.Done():
				return &InstallError{Entry: e.Key(), Reason: "bootstrap cancelled", Err: ctx.Err()}
			case <-time.After(bootstrapBackoff):
			}
		}
		output, err = s.run.Run(ctx, tool.bootstrap[0], tool.bootstrap[1:]...)
		if err == nil {
			return nil
		}
	}
	return &InstallError{Entry: e.Key(), Reason: "bootstrap failed: " + string(output), Err: err}
}
