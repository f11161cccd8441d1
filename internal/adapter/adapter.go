// Package adapter holds the installer backends: one Adapter per category of
// desired-state entry (Homebrew packages and casks, asdf plugins, standalone
// bootstrap tools, the tool-versions bulk install, font archives). Each
// adapter knows how to ask "is this installed?" and how to close the gap
// when it is not.
package adapter

import (
	"context"
	"errors"
	"fmt"

	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/runner"
	"bootstrap-mac/internal/system"
)

// Adapter is the backend-specific implementation of presence-check and
// install for one category of entry.
type Adapter interface {
	// CheckPresence reports whether the entry is already satisfied on the
	// system. It must have no side effects: re-running a fully provisioned
	// machine is a no-op precisely because this is re-queried every run.
	CheckPresence(ctx context.Context, e config.Entry) (bool, error)

	// Install performs the install action for an absent entry. It is called
	// at most once per entry per run.
	Install(ctx context.Context, e config.Entry) error
}

// InstallError describes a failed install action for a single entry.
type InstallError struct {
	Entry  string
	Reason string
	Err    error
}

func (e *InstallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("install %s: %s: %v", e.Entry, e.Reason, e.Err)
	}
	return fmt.Sprintf("install %s: %s", e.Entry, e.Reason)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// ErrConfigMissing marks an optional declarative input as absent (such as a
// missing ~/.tool-versions file). The reconciler records it as informational
// rather than as a failure.
var ErrConfigMissing = errors.New("declarative input missing")

// Registry binds each entry kind to the adapter servicing it. It is resolved
// once at startup and never mutated during a run.
type Registry map[config.Kind]Adapter

// NewRegistry wires the default backends against the given environment.
// Font entries route through a composite: archive-sourced fonts go to the
// archive installer, everything else is a cask from the fonts tap.
func NewRegistry(sys *system.Context, run runner.Runner) Registry {
	brew := NewBrew(run)
	return Registry{
		config.KindCaskApp:        brew,
		config.KindCliPackage:     brew,
		config.KindFont:           &fontRouter{brew: brew, archive: NewFontArchive(sys)},
		config.KindPlugin:         NewAsdfPlugins(run),
		config.KindStandaloneTool: NewStandalone(sys, run),
		config.KindVersionSet:     NewVersionSet(sys, run),
	}
}

// Resolve returns the adapter for a kind, or an error for a kind no backend
// was bound to. Spec validation makes this unreachable for loaded specs, but
// programmatically built specs still get a clear failure.
func (r Registry) Resolve(kind config.Kind) (Adapter, error) {
	a, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("no installer adapter bound for kind %q", kind)
	}
	return a, nil
}

// fontRouter dispatches font entries to the matching backend: entries with a
// SourceRef carry a downloadable archive, entries without are cask tokens.
type fontRouter struct {
	brew    *Brew
	archive *FontArchive
}

func (f *fontRouter) pick(e config.Entry) Adapter {
	if e.SourceRef != "" {
		return f.archive
	}
	return f.brew
}

func (f *fontRouter) CheckPresence(ctx context.Context, e config.Entry) (bool, error) {
	return f.pick(e).CheckPresence(ctx, e)
}

func (f *fontRouter) Install(ctx context.Context, e config.Entry) error {
	return f.pick(e).Install(ctx, e)
}
