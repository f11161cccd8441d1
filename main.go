package main

import (
	"bootstrap-mac/cmd" // CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing
// and execution.
//
// bootstrap-mac idempotently provisions a macOS development workstation:
//   - A declarative desired-state spec lists every GUI app, CLI package,
//     font, shell tool, asdf plugin, and runtime version set the machine
//     needs; a built-in spec covers the standard setup, a YAML file can
//     override it
//   - A reconciler walks the spec in order, asks the matching installer
//     backend whether each entry is already present, and installs only what
//     is absent, so re-running on a provisioned machine changes nothing
//   - Installs go through Homebrew (formulae and casks), asdf (plugins and
//     versions from ~/.tool-versions), upstream bootstrap scripts (Homebrew
//     itself, oh-my-zsh), or direct font-archive downloads
//   - There is no persisted state between runs: idempotence comes from
//     re-querying the actual system every time
//
// Error handling strategy:
//   - Per-entry install failures are recorded and reported, and the run
//     continues for unrelated entries; entries depending on a failure are
//     skipped, never attempted
//   - A failed critical entry (Homebrew, asdf) or a failed precondition
//     (not running on macOS) makes the process exit non-zero
func main() {
	cmd.Execute()
}
