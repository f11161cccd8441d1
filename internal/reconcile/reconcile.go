// Package reconcile walks a desired-state spec against the actual system
// state and performs only the install actions needed to close the gap.
// Re-running against an already-provisioned machine is a no-op apart from
// informational output: idempotence comes from re-querying the system every
// run, never from stored results.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"bootstrap-mac/internal/adapter"
	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/logger"
	"bootstrap-mac/internal/system"
)

// Reconciler drives one run: for each entry it resolves the matching
// installer backend, queries current state, and installs only on absence.
// Entries are processed strictly one at a time; install actions share
// mutable system resources (the brew and asdf databases) and must not race.
type Reconciler struct {
	sys      *system.Context
	adapters adapter.Registry
	sink     Sink

	// dryRun skips install actions and reports what apply would do.
	dryRun bool
}

// New builds a reconciler. A nil sink silences per-entry reporting.
func New(sys *system.Context, adapters adapter.Registry, sink Sink) *Reconciler {
	if sink == nil {
		sink = nopSink{}
	}
	return &Reconciler{sys: sys, adapters: adapters, sink: sink}
}

// NewPlan builds a reconciler in plan mode: presence checks run, install
// actions never do.
func NewPlan(sys *system.Context, adapters adapter.Registry, sink Sink) *Reconciler {
	r := New(sys, adapters, sink)
	r.dryRun = true
	return r
}

// Reconcile processes the spec entries in declared order and returns the
// aggregated summary. The returned error is non-nil only for run-level
// failures (failed precondition, invalid spec, cancellation); per-entry
// failures are recorded in the summary instead.
//
// On cancellation the summary covers everything processed up to that point,
// with the remaining entries recorded as skipped; already-completed installs
// are real system state and stay intact.
func (r *Reconciler) Reconcile(ctx context.Context, spec *config.Spec) (*Summary, error) {
	// Hard preconditions abort before any mutation and before any outcome
	// is recorded.
	if err := r.sys.Verify(); err != nil {
		return &Summary{}, err
	}
	if err := spec.Validate(); err != nil {
		return &Summary{}, fmt.Errorf("invalid spec: %w", err)
	}

	summary := &Summary{}
	// statuses indexes recorded outcomes by entry key for dependency checks.
	statuses := make(map[string]Status, len(spec.Entries))

	for i, entry := range spec.Entries {
		if err := ctx.Err(); err != nil {
			// Cancelled: record the rest as skipped so nothing is silently
			// dropped, then surface the cancellation.
			for _, rest := range spec.Entries[i:] {
				r.record(summary, statuses, rest, StatusSkipped, "run cancelled")
			}
			return summary, err
		}

		if blocker := r.blockedBy(entry, statuses); blocker != "" {
			r.record(summary, statuses, entry, StatusSkipped, "prerequisite "+blocker+" not satisfied")
			continue
		}

		r.processEntry(ctx, summary, statuses, entry)
	}
	return summary, nil
}

// blockedBy returns the key of the first prerequisite that failed or was
// skipped, or "" when the entry may run. Validation guarantees prerequisites
// precede their dependents, so a skipped prerequisite already reflects its
// own ancestors and the check is transitive for free.
func (r *Reconciler) blockedBy(entry config.Entry, statuses map[string]Status) string {
	for _, req := range entry.Requires {
		switch statuses[req] {
		case StatusFailed, StatusSkipped:
			return req
		}
	}
	return ""
}

// processEntry runs the presence check and, on absence, the install action,
// converting every per-entry error into an outcome at this boundary.
func (r *Reconciler) processEntry(ctx context.Context, summary *Summary, statuses map[string]Status, entry config.Entry) {
	backend, err := r.adapters.Resolve(entry.Kind)
	if err != nil {
		r.fail(summary, statuses, entry, err)
		return
	}

	present, err := backend.CheckPresence(ctx, entry)
	if err != nil {
		r.fail(summary, statuses, entry, fmt.Errorf("presence check failed: %w", err))
		return
	}
	if present {
		r.record(summary, statuses, entry, StatusAlreadySatisfied, "")
		return
	}

	if r.dryRun {
		r.record(summary, statuses, entry, StatusWouldInstall, "")
		return
	}

	if err := backend.Install(ctx, entry); err != nil {
		if errors.Is(err, adapter.ErrConfigMissing) {
			r.record(summary, statuses, entry, StatusConfigMissing, err.Error())
			return
		}
		r.fail(summary, statuses, entry, err)
		return
	}
	r.record(summary, statuses, entry, StatusInstalled, "")
}

// fail records a Failed outcome and escalates critical entries to fatal.
func (r *Reconciler) fail(summary *Summary, statuses map[string]Status, entry config.Entry, err error) {
	r.record(summary, statuses, entry, StatusFailed, err.Error())
	if entry.Critical {
		logger.Error("[ERROR] Critical entry %s failed, run will exit non-zero\n", entry.Key())
		summary.FatalEncountered = true
	}
}

// record appends the outcome, indexes it for dependency checks, and streams
// it to the sink. A sink fault must never abort reconciliation.
func (r *Reconciler) record(summary *Summary, statuses map[string]Status, entry config.Entry, status Status, detail string) {
	outcome := Outcome{Entry: entry, Status: status, Detail: detail}
	summary.Outcomes = append(summary.Outcomes, outcome)
	statuses[entry.Key()] = status

	defer func() {
		if p := recover(); p != nil {
			logger.Error("[ERROR] Report sink panicked on %s: %v\n", entry.Key(), p)
		}
	}()
	r.sink.Emit(outcome)
}
