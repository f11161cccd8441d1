package adapter

import (
	"context"

	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/logger"
	"bootstrap-mac/internal/runner"
)

// Brew installs Homebrew formulae (CLI packages) and casks (GUI apps and
// fonts from the cask fonts tap).
type Brew struct {
	run runner.Runner
}

func NewBrew(run runner.Runner) *Brew {
	return &Brew{run: run}
}

// isCask reports whether the entry installs as a cask rather than a formula.
// Font entries reaching this adapter are always cask tokens.
func isCask(e config.Entry) bool {
	return e.Kind == config.KindCaskApp || e.Kind == config.KindFont
}

// CheckPresence queries the installed list for the single package. A non-zero
// exit from `brew list <name>` means "not installed"; a broken brew surfaces
// later as an install failure with its full output.
func (b *Brew) CheckPresence(ctx context.Context, e config.Entry) (bool, error) {
	args := []string{"list"}
	if isCask(e) {
		args = append(args, "--cask")
	} else {
		args = append(args, "--formula")
	}
	args = append(args, e.ID)

	if _, err := b.run.Run(ctx, "brew", args...); err != nil {
		logger.Debug("[DEBUG] brew list says %s is not installed: %v\n", e.ID, err)
		return false, nil
	}
	return true, nil
}

// Install runs `brew install`, with --cask for GUI bundles and fonts.
// Extra entry args (e.g. --HEAD) are forwarded verbatim.
func (b *Brew) Install(ctx context.Context, e config.Entry) error {
	args := []string{"install"}
	if isCask(e) {
		args = append(args, "--cask")
	}
	args = append(args, e.ID)
	args = append(args, e.Args...)

	output, err := b.run.Run(ctx, "brew", args...)
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "brew install failed: " + string(output), Err: err}
	}
	return nil
}
