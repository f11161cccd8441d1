package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"bootstrap-mac/internal/logger"
)

// debug indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// rootCmd is the base command for the CLI tool `bootstrap-mac`.
var rootCmd = &cobra.Command{
	Use:   "bootstrap-mac",
	Short: "Idempotent macOS workstation provisioning",

	// PersistentPreRun runs before any subcommand; the logger is initialized
	// here so the --debug flag has already been parsed.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},

	// A bare invocation is a full apply against the built-in spec, so the
	// tool works as a single no-argument run.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, false)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute registers flags and subcommands and runs the CLI. A returned error
// (failed precondition, fatal install failure) maps to a non-zero exit status.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
