package reconcile

import "bootstrap-mac/internal/config"

// Status is the terminal result of one desired-state entry in a run.
type Status string

const (
	// StatusAlreadySatisfied means the presence check found the entry
	// installed; no install action was taken.
	StatusAlreadySatisfied Status = "already-satisfied"
	// StatusInstalled means the install action ran and succeeded.
	StatusInstalled Status = "installed"
	// StatusFailed means the install action ran and failed.
	StatusFailed Status = "failed"
	// StatusSkipped means the entry was never attempted, because a
	// prerequisite failed or the run was cancelled.
	StatusSkipped Status = "skipped"
	// StatusConfigMissing means the entry's optional declarative input was
	// absent; informational, never fatal.
	StatusConfigMissing Status = "config-missing"
	// StatusWouldInstall is reported only in plan mode for entries an apply
	// run would install.
	StatusWouldInstall Status = "would-install"
)

// Outcome records what happened to one entry. Immutable once recorded.
type Outcome struct {
	Entry  config.Entry `json:"entry"`
	Status Status       `json:"status"`
	// Detail carries the failure reason, the skipped prerequisite, or other
	// human-readable context.
	Detail string `json:"detail,omitempty"`
}

// Summary is the aggregate result of one reconcile run. It is built
// incrementally by the reconciler and read-only to consumers.
type Summary struct {
	Outcomes []Outcome `json:"outcomes"`
	// FatalEncountered is set when a prerequisite-critical entry failed.
	FatalEncountered bool `json:"fatal_encountered"`
}

// Count returns how many outcomes carry the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// ExitCode is the process exit status the caller owes its invoker:
// zero on full success or all-non-fatal, non-zero when a critical entry failed.
func (s *Summary) ExitCode() int {
	if s.FatalEncountered {
		return 1
	}
	return 0
}
