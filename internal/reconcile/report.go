package reconcile

import (
	"encoding/json"

	"github.com/spf13/afero"

	"bootstrap-mac/internal/logger"
)

// Sink receives each outcome as it is recorded. Implementations must render
// each status distinctly; formatting faults are contained by the reconciler
// and never abort a run.
type Sink interface {
	Emit(o Outcome)
}

type nopSink struct{}

func (nopSink) Emit(Outcome) {}

// ConsoleSink renders outcomes as colored log lines, one per entry.
type ConsoleSink struct{}

func (ConsoleSink) Emit(o Outcome) {
	key := o.Entry.Key()
	switch o.Status {
	case StatusAlreadySatisfied:
		logger.Info("[INFO] %s already installed. Skipping.\n", key)
	case StatusInstalled:
		logger.Info("[INFO] Installed %s\n", key)
	case StatusWouldInstall:
		logger.Info("[INFO] %s is missing and would be installed\n", key)
	case StatusFailed:
		logger.Error("[ERROR] Failed to install %s: %s\n", key, o.Detail)
	case StatusSkipped:
		logger.Warn("[WARN] Skipped %s: %s\n", key, o.Detail)
	case StatusConfigMissing:
		logger.Warn("[WARN] %s: %s\n", key, o.Detail)
	default:
		logger.Warn("[WARN] %s finished with unknown status %q\n", key, o.Status)
	}
}

// WriteReport writes the summary as indented JSON for machine consumption.
// The report is write-only output of this run: it is never read back, so it
// cannot leak state into the next run. Errors are logged, not propagated; a
// failed report must not turn a successful run into a failure.
func WriteReport(fs afero.Fs, path string, summary *Summary) {
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal run report: %v\n", err)
		return
	}
	logger.Debug("[DEBUG] Writing run report to %s\n", path)
	if err := afero.WriteFile(fs, path, raw, 0644); err != nil {
		logger.Error("[ERROR] Failed to write run report %s: %v\n", path, err)
	}
}
