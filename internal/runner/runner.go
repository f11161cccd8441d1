// Package runner wraps external command execution behind a small interface
// so installer backends never reach os/exec directly and tests never spawn
// processes.
package runner

import (
	"context"
	"os/exec"
	"strings"

	"bootstrap-mac/internal/logger"
)

// Runner executes an external command and returns its combined output.
// A non-nil error means a non-zero exit or a failure to start; the output is
// still returned for diagnostics.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Exec runs commands with os/exec. Install actions may block for arbitrary
// wall-clock time (package downloads); no internal timeout is imposed, the
// context is the only cancellation mechanism.
type Exec struct{}

func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		logger.Debug("[DEBUG] Command %s failed: %v\n", name, err)
	}
	return output, err
}
