package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bootstrap-mac/internal/logger"
)

// LoadSpec reads a desired-state spec from a YAML file and validates it.
// The file holds an `entries:` list matching the Entry yaml tags.
// Any read, parse, or validation failure aborts the run before any mutation.
func LoadSpec(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file %s: %w", path, err)
	}

	var spec Spec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec file %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Loaded %d entries from %s\n", len(spec.Entries), path)

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spec %s: %w", path, err)
	}
	return &spec, nil
}

// DefaultSpec is the built-in desired state for a macOS development
// workstation. It is used when no --spec file is given.
//
// Ordering matters only through the requires edges: Homebrew must exist
// before anything brew-backed, asdf before its plugins, and the plugins
// before the bulk version install.
func DefaultSpec() *Spec {
	spec := &Spec{Entries: []Entry{
		// Package manager first. Everything brew-backed depends on it.
		{Kind: KindStandaloneTool, ID: "homebrew", Critical: true},

		// GUI applications.
		{Kind: KindCaskApp, ID: "iterm2", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCaskApp, ID: "visual-studio-code", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCaskApp, ID: "docker", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCaskApp, ID: "rectangle", Requires: []string{"standalone/homebrew"}},

		// CLI tooling.
		{Kind: KindCliPackage, ID: "git", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "ripgrep", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "fzf", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "jq", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "gh", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "wget", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "tmux", Requires: []string{"standalone/homebrew"}},
		{Kind: KindCliPackage, ID: "neovim", Requires: []string{"standalone/homebrew"}},

		// Fonts: one from the cask fonts tap, one fetched as a release archive.
		{Kind: KindFont, ID: "font-jetbrains-mono-nerd-font", Requires: []string{"standalone/homebrew"}},
		{Kind: KindFont, ID: "monaspace", SourceRef: "githubnext/monaspace@v1.101"},

		// Shell prompt and shell framework.
		{Kind: KindStandaloneTool, ID: "starship", Requires: []string{"standalone/homebrew"}},
		{Kind: KindStandaloneTool, ID: "oh-my-zsh"},

		// Runtime version manager and its plugins. asdf is critical: without
		// it the plugins and the version install below can never succeed.
		{Kind: KindStandaloneTool, ID: "asdf", Critical: true, Requires: []string{"standalone/homebrew"}},
		{Kind: KindPlugin, ID: "nodejs", Requires: []string{"standalone/asdf"}},
		{Kind: KindPlugin, ID: "python", Requires: []string{"standalone/asdf"}},
		{Kind: KindPlugin, ID: "golang", SourceRef: "https://github.com/asdf-community/asdf-golang.git", Requires: []string{"standalone/asdf"}},

		// Bulk install of whatever ~/.tool-versions declares.
		{Kind: KindVersionSet, ID: "tool-versions", Requires: []string{"plugin/nodejs", "plugin/python", "plugin/golang"}},
	}}
	return spec
}
