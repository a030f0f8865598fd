package process

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"github.com/portscope/portscope/internal/port"
)

// TaskkillKiller terminates Windows processes with a single forceful
// taskkill, no escalation or polling. It compiles on every platform so
// its failure classification can be tested anywhere.
type TaskkillKiller struct {
	runner port.CmdRunner
}

// NewTaskkillKiller creates a killer backed by taskkill.
func NewTaskkillKiller(runner port.CmdRunner) *TaskkillKiller {
	return &TaskkillKiller{runner: runner}
}

// Kill issues taskkill /PID <pid> /F and classifies the tool's textual
// failure output. taskkill exposes no stable exit codes, so the match
// is on the English message substrings; other locales fall through to
// Unknown.
func (k *TaskkillKiller) Kill(ctx context.Context, pid int) error {
	if protectedPID(pid) {
		return &KillError{Kind: PermissionDenied, PID: pid, Err: errors.New("refusing to kill protected PID")}
	}

	out, err := k.runner.Run(ctx, "taskkill", "/PID", strconv.Itoa(pid), "/F")
	if err == nil {
		return nil
	}

	text := string(out)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		text += string(exitErr.Stderr)
	}
	text = strings.ToLower(text)

	switch {
	case strings.Contains(text, "not found"):
		return &KillError{Kind: NotFound, PID: pid, Err: err}
	case strings.Contains(text, "denied"):
		return &KillError{Kind: PermissionDenied, PID: pid, Err: err}
	default:
		return &KillError{Kind: Unknown, PID: pid, Err: err}
	}
}
