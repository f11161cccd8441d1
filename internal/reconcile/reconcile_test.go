package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap-mac/internal/adapter"
	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/reconcile"
	"bootstrap-mac/internal/system"
)

// fakeBackend is a scripted Adapter shared across all kinds. Installing an
// absent entry marks it present, so a second run over the same backend sees
// the state a real system would have.
type fakeBackend struct {
	present       map[string]bool
	installErr    map[string]error
	configMissing map[string]bool

	checks   []string
	installs []string
}

func newFakeBackend(presentKeys ...string) *fakeBackend {
	f := &fakeBackend{
		present:       make(map[string]bool),
		installErr:    make(map[string]error),
		configMissing: make(map[string]bool),
	}
	for _, k := range presentKeys {
		f.present[k] = true
	}
	return f
}

func (f *fakeBackend) CheckPresence(_ context.Context, e config.Entry) (bool, error) {
	f.checks = append(f.checks, e.Key())
	return f.present[e.Key()], nil
}

func (f *fakeBackend) Install(_ context.Context, e config.Entry) error {
	key := e.Key()
	f.installs = append(f.installs, key)
	if f.configMissing[key] {
		return fmt.Errorf("%w: no version declarations", adapter.ErrConfigMissing)
	}
	if err := f.installErr[key]; err != nil {
		return err
	}
	f.present[key] = true
	return nil
}

// registryFor binds every kind to the same fake backend.
func registryFor(f *fakeBackend) adapter.Registry {
	reg := make(adapter.Registry)
	for _, kind := range []config.Kind{
		config.KindCaskApp, config.KindCliPackage, config.KindFont,
		config.KindPlugin, config.KindStandaloneTool, config.KindVersionSet,
	} {
		reg[kind] = f
	}
	return reg
}

func darwinContext() *system.Context {
	return &system.Context{
		GOOS:     "darwin",
		Home:     "/Users/dev",
		Fs:       afero.NewMemMapFs(),
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
}

// statusByKey flattens a summary for assertions.
func statusByKey(s *reconcile.Summary) map[string]reconcile.Status {
	got := make(map[string]reconcile.Status, len(s.Outcomes))
	for _, o := range s.Outcomes {
		got[o.Entry.Key()] = o.Status
	}
	return got
}

func TestReconcileInstallsOnlyAbsentEntries(t *testing.T) {
	backend := newFakeBackend("cli/git")
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindCliPackage, ID: "git"},
		{Kind: config.KindCliPackage, ID: "ripgrep"},
	}}

	summary, err := reconcile.New(darwinContext(), registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, map[string]reconcile.Status{
		"cli/git":     reconcile.StatusAlreadySatisfied,
		"cli/ripgrep": reconcile.StatusInstalled,
	}, statusByKey(summary))
	assert.Equal(t, []string{"cli/ripgrep"}, backend.installs, "present entries must never be installed")
	assert.Equal(t, 0, summary.ExitCode())
}

func TestReconcileIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindStandaloneTool, ID: "homebrew", Critical: true},
		{Kind: config.KindCliPackage, ID: "ripgrep", Requires: []string{"standalone/homebrew"}},
		{Kind: config.KindCaskApp, ID: "iterm2", Requires: []string{"standalone/homebrew"}},
	}}
	rec := reconcile.New(darwinContext(), registryFor(backend), nil)

	first, err := rec.Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Count(reconcile.StatusInstalled))
	installsAfterFirst := len(backend.installs)

	second, err := rec.Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Count(reconcile.StatusAlreadySatisfied))
	assert.Len(t, backend.installs, installsAfterFirst, "second run must perform zero install actions")
}

func TestReconcileSkipsDependentsOfFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.installErr["standalone/asdf"] = errors.New("bottle checksum mismatch")
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindStandaloneTool, ID: "asdf"},
		{Kind: config.KindPlugin, ID: "nodejs", Requires: []string{"standalone/asdf"}},
		{Kind: config.KindVersionSet, ID: "tool-versions", Requires: []string{"plugin/nodejs"}},
		{Kind: config.KindCliPackage, ID: "ripgrep"},
	}}

	summary, err := reconcile.New(darwinContext(), registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	got := statusByKey(summary)
	assert.Equal(t, reconcile.StatusFailed, got["standalone/asdf"])
	// Dependents are skipped, not failed: they were never attempted.
	assert.Equal(t, reconcile.StatusSkipped, got["plugin/nodejs"])
	// The skip is transitive through the chain of requires edges.
	assert.Equal(t, reconcile.StatusSkipped, got["versions/tool-versions"])
	// Unrelated entries still run.
	assert.Equal(t, reconcile.StatusInstalled, got["cli/ripgrep"])

	assert.Equal(t, []string{"standalone/asdf", "cli/ripgrep"}, backend.installs,
		"skipped entries must not reach their adapter at all")
	assert.False(t, summary.FatalEncountered, "a non-critical failure is recoverable")
	assert.Equal(t, 0, summary.ExitCode())
}

func TestReconcileCriticalFailureIsFatal(t *testing.T) {
	backend := newFakeBackend()
	backend.installErr["standalone/homebrew"] = errors.New("install script unreachable")
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindStandaloneTool, ID: "homebrew", Critical: true},
		{Kind: config.KindCliPackage, ID: "git", Requires: []string{"standalone/homebrew"}},
		{Kind: config.KindStandaloneTool, ID: "oh-my-zsh"},
	}}

	summary, err := reconcile.New(darwinContext(), registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	got := statusByKey(summary)
	assert.Equal(t, reconcile.StatusFailed, got["standalone/homebrew"])
	assert.Equal(t, reconcile.StatusSkipped, got["cli/git"])
	// oh-my-zsh does not depend on homebrew and still gets its chance.
	assert.Equal(t, reconcile.StatusInstalled, got["standalone/oh-my-zsh"])

	assert.True(t, summary.FatalEncountered)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestReconcilePreconditionAbortsBeforeAnyMutation(t *testing.T) {
	backend := newFakeBackend()
	sys := darwinContext()
	sys.GOOS = "linux"
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindCliPackage, ID: "ripgrep"},
	}}

	summary, err := reconcile.New(sys, registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.Error(t, err)
	var pre *system.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Empty(t, summary.Outcomes, "a failed precondition records zero outcomes")
	assert.Empty(t, backend.checks)
	assert.Empty(t, backend.installs)
}

func TestReconcileRejectsInvalidSpec(t *testing.T) {
	backend := newFakeBackend()
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindCliPackage, ID: "ripgrep"},
		{Kind: config.KindCliPackage, ID: "ripgrep"},
	}}

	summary, err := reconcile.New(darwinContext(), registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
	assert.Empty(t, summary.Outcomes)
	assert.Empty(t, backend.installs)
}

func TestReconcileConfigMissingIsInformational(t *testing.T) {
	backend := newFakeBackend()
	backend.configMissing["versions/tool-versions"] = true
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindVersionSet, ID: "tool-versions"},
	}}

	summary, err := reconcile.New(darwinContext(), registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, reconcile.StatusConfigMissing, summary.Outcomes[0].Status)
	assert.False(t, summary.FatalEncountered)
	assert.Equal(t, 0, summary.ExitCode(), "missing optional config never fails the run")
}

func TestReconcileCancellationKeepsPartialSummary(t *testing.T) {
	backend := newFakeBackend()
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindCliPackage, ID: "git"},
		{Kind: config.KindCliPackage, ID: "ripgrep"},
		{Kind: config.KindCliPackage, ID: "jq"},
	}}

	// Cancel after the first entry completes.
	ctx, cancel := context.WithCancel(context.Background())
	rec := reconcile.New(darwinContext(), registryFor(backend), cancelAfterFirst{cancel})

	summary, err := rec.Reconcile(ctx, spec)
	require.ErrorIs(t, err, context.Canceled)

	got := statusByKey(summary)
	assert.Equal(t, reconcile.StatusInstalled, got["cli/git"], "completed entries stay recorded")
	assert.Equal(t, reconcile.StatusSkipped, got["cli/ripgrep"])
	assert.Equal(t, reconcile.StatusSkipped, got["cli/jq"])
	assert.Len(t, summary.Outcomes, 3, "every entry is reported even on interruption")
	assert.Equal(t, []string{"cli/git"}, backend.installs)
}

// cancelAfterFirst is a sink that cancels the run once the first outcome
// streams in, simulating a user interrupt mid-run.
type cancelAfterFirst struct {
	cancel context.CancelFunc
}

func (c cancelAfterFirst) Emit(reconcile.Outcome) {
	c.cancel()
}

func TestReconcileSinkPanicDoesNotAbort(t *testing.T) {
	backend := newFakeBackend()
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindCliPackage, ID: "git"},
		{Kind: config.KindCliPackage, ID: "ripgrep"},
	}}

	summary, err := reconcile.New(darwinContext(), registryFor(backend), panickySink{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.Len(t, summary.Outcomes, 2, "a logging fault must never abort reconciliation")
}

type panickySink struct{}

func (panickySink) Emit(reconcile.Outcome) {
	panic("formatting failure")
}

func TestPlanModeNeverInstalls(t *testing.T) {
	backend := newFakeBackend("cli/git")
	spec := &config.Spec{Entries: []config.Entry{
		{Kind: config.KindCliPackage, ID: "git"},
		{Kind: config.KindCliPackage, ID: "ripgrep"},
	}}

	summary, err := reconcile.NewPlan(darwinContext(), registryFor(backend), nil).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, map[string]reconcile.Status{
		"cli/git":     reconcile.StatusAlreadySatisfied,
		"cli/ripgrep": reconcile.StatusWouldInstall,
	}, statusByKey(summary))
	assert.Empty(t, backend.installs, "plan mode performs zero install actions")
}
