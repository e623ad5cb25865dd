// Package runnertest provides a scripted domain.CommandRunner for tests.
package runnertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Call records one invocation.
type Call struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake answers commands from a table keyed by the full command line, or by
// a prefix of it. Unknown commands fail with "Command not found".
type Fake struct {
	mu        sync.Mutex
	responses map[string]domain.CommandResult
	hooks     map[string]func(Call) domain.CommandResult
	calls     []Call
}

func New() *Fake {
	return &Fake{
		responses: make(map[string]domain.CommandResult),
		hooks:     make(map[string]func(Call) domain.CommandResult),
	}
}

// On registers a result for a command line prefix.
func (f *Fake) On(prefix string, res domain.CommandResult) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = res
	return f
}

// OnFunc registers a callback for a command line prefix.
func (f *Fake) OnFunc(prefix string, fn func(Call) domain.CommandResult) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[prefix] = fn
	return f
}

func (f *Fake) Run(_ context.Context, timeout time.Duration, name string, args ...string) domain.CommandResult {
	call := Call{Name: name, Args: append([]string(nil), args...), Timeout: timeout}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	line := call.String()
	var (
		bestLen  = -1
		best     domain.CommandResult
		bestHook func(Call) domain.CommandResult
	)
	for prefix, res := range f.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > bestLen {
			bestLen, best, bestHook = len(prefix), res, nil
		}
	}
	for prefix, fn := range f.hooks {
		if strings.HasPrefix(line, prefix) && len(prefix) > bestLen {
			bestLen, bestHook = len(prefix), fn
		}
	}
	f.mu.Unlock()

	if bestHook != nil {
		return bestHook(call)
	}
	if bestLen >= 0 {
		return best
	}
	return domain.CommandResult{Success: false, Stderr: "Command not found: " + name, ExitCode: -1}
}

// Calls returns every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns recorded invocations as command lines.
func (f *Fake) Lines() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}
