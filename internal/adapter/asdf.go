package adapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/logger"
	"bootstrap-mac/internal/runner"
	"bootstrap-mac/internal/system"
)

// AsdfPlugins registers asdf plugins. Presence is set membership in the
// output of `asdf plugin list`; install registers the plugin, optionally
// from an explicit repo URL when the plugin is not in the default registry.
type AsdfPlugins struct {
	run runner.Runner
}

func NewAsdfPlugins(run runner.Runner) *AsdfPlugins {
	return &AsdfPlugins{run: run}
}

func (a *AsdfPlugins) CheckPresence(ctx context.Context, e config.Entry) (bool, error) {
	output, err := a.run.Run(ctx, "asdf", "plugin", "list")
	if err != nil {
		// asdf itself missing or broken reads as "plugin absent"; the
		// dependency edge on the asdf entry keeps this from being attempted
		// when the version manager could not be installed.
		logger.Debug("[DEBUG] asdf plugin list failed: %v\n", err)
		return false, nil
	}
	for _, line := range strings.Split(string(output), "\n") {
		if strings.TrimSpace(line) == e.ID {
			return true, nil
		}
	}
	return false, nil
}

// Install runs `asdf plugin add <name> [url]`. The explicit SourceRef, when
// declared, is passed through exactly as given; without one, asdf falls back
// to its default plugin registry.
func (a *AsdfPlugins) Install(ctx context.Context, e config.Entry) error {
	args := []string{"plugin", "add", e.ID}
	if e.SourceRef != "" {
		args = append(args, e.SourceRef)
	}
	output, err := a.run.Run(ctx, "asdf", args...)
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "asdf plugin add failed: " + string(output), Err: err}
	}
	return nil
}

// ToolVersion is one parsed line of a tool-versions file: a tool name and
// the versions declared for it (asdf allows several per tool).
type ToolVersion struct {
	Tool     string
	Versions []string
}

// ParseToolVersions reads the asdf .tool-versions format: one tool name
// followed by one or more versions per line, `#` comments, blank lines
// ignored.
func ParseToolVersions(r io.Reader) ([]ToolVersion, error) {
	var decls []ToolVersion
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed tool-versions line %q: want tool and at least one version", strings.TrimSpace(line))
		}
		decls = append(decls, ToolVersion{Tool: fields[0], Versions: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tool-versions: %w", err)
	}
	return decls, nil
}

// VersionSet drives the bulk `asdf install` from the user's tool-versions
// file. An absent file is not an error: the entry reports ConfigMissing and
// the run carries on.
type VersionSet struct {
	sys *system.Context
	run runner.Runner
}

func NewVersionSet(sys *system.Context, run runner.Runner) *VersionSet {
	return &VersionSet{sys: sys, run: run}
}

// versionsPath lets an entry point at an alternate declaration file via
// SourceRef; the default is ~/.tool-versions.
func (v *VersionSet) versionsPath(e config.Entry) string {
	if e.SourceRef != "" {
		return e.SourceRef
	}
	return v.sys.ToolVersionsPath()
}

// CheckPresence reports whether every declared version is already installed,
// by asking `asdf list <tool>` per declared tool. An absent declaration file
// reads as "not present" here and becomes ConfigMissing in Install.
func (v *VersionSet) CheckPresence(ctx context.Context, e config.Entry) (bool, error) {
	path := v.versionsPath(e)
	f, err := v.sys.Fs.Open(path)
	if err != nil {
		logger.Debug("[DEBUG] No tool-versions file at %s\n", path)
		return false, nil
	}
	defer f.Close()

	decls, err := ParseToolVersions(f)
	if err != nil {
		return false, err
	}
	for _, d := range decls {
		output, err := v.run.Run(ctx, "asdf", "list", d.Tool)
		if err != nil {
			return false, nil
		}
		installed := make(map[string]bool)
		for _, line := range strings.Split(string(output), "\n") {
			// asdf marks the current version with a leading asterisk.
			installed[strings.TrimPrefix(strings.TrimSpace(line), "*")] = true
		}
		for _, want := range d.Versions {
			if !installed[want] {
				logger.Debug("[DEBUG] %s %s not installed yet\n", d.Tool, want)
				return false, nil
			}
		}
	}
	return true, nil
}

// Install triggers installation of every declared version via a single
// `asdf install`, which reads the same declaration file.
func (v *VersionSet) Install(ctx context.Context, e config.Entry) error {
	path := v.versionsPath(e)
	exists, err := afero.Exists(v.sys.Fs, path)
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "cannot stat " + path, Err: err}
	}
	if !exists {
		return fmt.Errorf("%w: no version declarations at %s", ErrConfigMissing, path)
	}

	output, err := v.run.Run(ctx, "asdf", "install")
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "asdf install failed: " + string(output), Err: err}
	}
	return nil
}
