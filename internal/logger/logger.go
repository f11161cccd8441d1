package logger

import (
	"github.com/fatih/color" // Colored console output for the different log levels
)

// Colorized printing functions for the log levels. These are package-level
// variables holding functions that behave like fmt.Printf, but with text
// colored appropriately for the level.

// Info logs informational messages in green.
// Green is used for success or normal progress output.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta.
// Magenta stands out and signals caution without being alarming.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red to draw immediate attention.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan when enabled, otherwise is a no-op.
// It is assigned dynamically during Init based on the debug flag so that
// disabled debug logging costs nothing at the call sites.
var Debug func(format string, a ...any)

// Init enables or disables debug logging.
// When enabled, Debug prints cyan-colored messages; when disabled, Debug is a
// no-op function that silently ignores its arguments.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}

func init() {
	// Safe default so packages can log debug lines before Init runs.
	Init(false)
}
