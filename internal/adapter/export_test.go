package adapter

import "time"

// SetBootstrapBackoff shortens the retry delay for tests and returns a
// function restoring the original value.
func SetBootstrapBackoff(d time.Duration) func() {
	old := bootstrapBackoff
	bootstrapBackoff = d
	return func() { bootstrapBackoff = old }
}
