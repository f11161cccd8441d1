package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bootstrap-mac/internal/adapter"
	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/logger"
	"bootstrap-mac/internal/reconcile"
	"bootstrap-mac/internal/runner"
	"bootstrap-mac/internal/system"
)

// specPath holds the path to an optional desired-state YAML file.
// Without it, the built-in workstation spec is used.
var specPath string

// reportPath, when set, is where the machine-readable run report is written.
var reportPath string

// applyCmd reconciles the workstation against the desired-state spec:
// check each entry for presence, install only what is absent.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Install everything the spec declares and the system is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, false)
	},
}

// planCmd runs presence checks only and reports what apply would install.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what apply would install, without installing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, true)
	},
}

// specCmd prints the effective desired-state spec as YAML.
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Print the effective desired-state spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadSpec()
		if err != nil {
			return err
		}
		raw, err := yaml.Marshal(spec)
		if err != nil {
			return err
		}
		cmd.Print(string(raw))
		return nil
	},
}

// loadSpec returns the --spec file when given, otherwise the built-in
// workstation spec.
func loadSpec() (*config.Spec, error) {
	if specPath != "" {
		return config.LoadSpec(specPath)
	}
	return config.DefaultSpec(), nil
}

// runReconcile wires the real environment, runs the reconciler, and turns
// the summary into the exit-code contract: non-zero iff a precondition
// failed or a critical entry could not be installed.
func runReconcile(cmd *cobra.Command, dryRun bool) error {
	sys, err := system.Current()
	if err != nil {
		return err
	}

	spec, err := loadSpec()
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		return err
	}

	adapters := adapter.NewRegistry(sys, runner.Exec{})
	var rec *reconcile.Reconciler
	if dryRun {
		rec = reconcile.NewPlan(sys, adapters, reconcile.ConsoleSink{})
	} else {
		rec = reconcile.New(sys, adapters, reconcile.ConsoleSink{})
	}

	summary, err := rec.Reconcile(cmd.Context(), spec)
	if reportPath != "" {
		reconcile.WriteReport(sys.Fs, reportPath, summary)
	}
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		return err
	}

	printTotals(summary, dryRun)
	if summary.ExitCode() != 0 {
		return fmt.Errorf("a critical entry failed to install")
	}
	return nil
}

// printTotals logs the aggregate counts at the end of a run.
func printTotals(summary *reconcile.Summary, dryRun bool) {
	if dryRun {
		logger.Info("[INFO] Plan: %d satisfied, %d to install, %d skipped\n",
			summary.Count(reconcile.StatusAlreadySatisfied),
			summary.Count(reconcile.StatusWouldInstall),
			summary.Count(reconcile.StatusSkipped))
		return
	}
	logger.Info("[INFO] Done: %d satisfied, %d installed, %d failed, %d skipped\n",
		summary.Count(reconcile.StatusAlreadySatisfied),
		summary.Count(reconcile.StatusInstalled),
		summary.Count(reconcile.StatusFailed),
		summary.Count(reconcile.StatusSkipped))
}

// init registers flags and wires the subcommands onto the root command.
func init() {
	for _, c := range []*cobra.Command{applyCmd, planCmd, specCmd} {
		c.Flags().StringVarP(&specPath, "spec", "s", "", "Path to a desired-state spec file (default: built-in spec)")
		c.SilenceUsage = true
		c.SilenceErrors = true
		rootCmd.AddCommand(c)
	}
	applyCmd.Flags().StringVar(&reportPath, "report", "", "Write the run report as JSON to this path")
	planCmd.Flags().StringVar(&reportPath, "report", "", "Write the run report as JSON to this path")
}
