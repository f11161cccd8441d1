package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Outputs and errors are keyed by the
// full command line ("brew list --formula git"); unscripted commands succeed
// with empty output. Every invocation is recorded in order.
type Fake struct {
	mu sync.Mutex

	// Outputs maps a command line to the bytes Run returns for it.
	Outputs map[string]string
	// Errs maps a command line to the error Run returns for it.
	Errs map[string]error
	// Calls records every command line executed, in order.
	Calls []string
}

// NewFake returns an empty scripted runner.
func NewFake() *Fake {
	return &Fake{
		Outputs: make(map[string]string),
		Errs:    make(map[string]error),
	}
}

// Script sets the output and error returned for one command line.
func (f *Fake) Script(cmdline, output string, err error) {
	f.Outputs[cmdline] = output
	f.Errs[cmdline] = err
}

// Fail scripts a command line to fail with the given reason.
func (f *Fake) Fail(cmdline, reason string) {
	f.Script(cmdline, reason, fmt.Errorf("exit status 1: %s", reason))
}

func (f *Fake) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmdline)
	return []byte(f.Outputs[cmdline]), f.Errs[cmdline]
}

// CallCount returns how many recorded invocations start with the prefix.
func (f *Fake) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
