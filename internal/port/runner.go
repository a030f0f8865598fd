package port

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout tags command failures caused by the execution deadline.
var ErrTimeout = errors.New("command timed out")

// IsTimeout reports whether err was caused by the command deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// DefaultCommandTimeout bounds every external tool invocation issued
// during a scan.
const DefaultCommandTimeout = 5 * time.Second

// RealCmdRunner executes real shell commands with a bounded deadline.
type RealCmdRunner struct {
	// Timeout applies per invocation. Zero means DefaultCommandTimeout.
	Timeout time.Duration
}

// Run executes a command and returns its stdout. Stderr never reaches
// the terminal: Output captures it into the returned *exec.ExitError,
// where callers that classify tool failures can read it. A command that
// exceeds the deadline fails with an error wrapping ErrTimeout.
func (r *RealCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return out, ErrTimeout
	}
	return out, err
}

// MockCmdRunner returns canned responses for testing.
type MockCmdRunner struct {
	Output []byte
	Err    error
}

// Run returns the pre-configured output and error.
func (m *MockCmdRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.Output, m.Err
}

// MultiMockCmdRunner returns different responses based on the command.
// Keys are "name arg1 arg2 ..." strings. Calls records every invocation
// in order, so tests can assert which enrichment steps actually ran.
type MultiMockCmdRunner struct {
	Responses map[string]MockResponse
	Calls     []string
}

// MockResponse holds a single command's output and error.
type MockResponse struct {
	Output []byte
	Err    error
}

// Run looks up the command key and returns its pre-configured response.
// Falls back to empty output and nil error if no match is found.
func (m *MultiMockCmdRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := name
	if len(args) > 0 {
		key = name + " " + strings.Join(args, " ")
	}
	m.Calls = append(m.Calls, key)
	if resp, ok := m.Responses[key]; ok {
		return resp.Output, resp.Err
	}
	return nil, nil
}
