package process

import (
	"context"
	"errors"
	"time"

	"github.com/portscope/portscope/internal/port"
)

// Sentinel errors a Signaller uses to classify signal failures.
var (
	// ErrProcessGone means no process with that PID exists.
	ErrProcessGone = errors.New("no such process")
	// ErrNotPermitted means the caller may not signal the process.
	ErrNotPermitted = errors.New("operation not permitted")
)

// Signaller sends termination signals and probes process existence.
// Alive returns nil while the process exists, ErrProcessGone once it is
// gone, and any other error when existence cannot be determined.
type Signaller interface {
	Terminate(pid int) error
	ForceKill(pid int) error
	Alive(pid int) error
}

// Killer terminates a process by PID.
type Killer interface {
	Kill(ctx context.Context, pid int) error
}

// Escalation timing. GracefulTimeout is the only knob callers tune;
// the poll cadence and the post-SIGKILL wait are fixed.
const (
	DefaultGracefulTimeout = 3 * time.Second
	pollInterval           = 100 * time.Millisecond
	forcefulWait           = time.Second
)

// protectedPID reports whether pid must never be signalled: the init
// process, zero (kill(2) signals the caller's process group), and
// negative values (kill(2) broadcasts to every signallable process for
// -1, or to process group N for -N).
func protectedPID(pid int) bool {
	return pid <= 1
}

// NewKiller returns the killer for the running operating system.
// On Unix it escalates SIGTERM -> SIGKILL with the given graceful
// timeout; on Windows it is a single-shot taskkill and the timeout is
// unused.
func NewKiller(runner port.CmdRunner, gracefulTimeout time.Duration) Killer {
	return defaultKiller(runner, gracefulTimeout)
}

// killState names the phases of the Unix escalation sequence.
type killState int

const (
	stateRunning killState = iota
	stateWaitingGraceful
	stateEscalate
)

// EscalatingKiller terminates Unix processes with a graceful signal,
// polls for exit, and escalates to a forceful signal after a bounded
// wait. Once the forceful signal has been sent the kill is reported as
// successful even if the process lingers (e.g. as a zombie): the
// listener has been removed to the extent the OS permits.
type EscalatingKiller struct {
	signals         Signaller
	gracefulTimeout time.Duration
}

// NewEscalatingKiller creates a killer over the given signaller. A
// non-positive gracefulTimeout falls back to DefaultGracefulTimeout.
func NewEscalatingKiller(signals Signaller, gracefulTimeout time.Duration) *EscalatingKiller {
	if gracefulTimeout <= 0 {
		gracefulTimeout = DefaultGracefulTimeout
	}
	return &EscalatingKiller{signals: signals, gracefulTimeout: gracefulTimeout}
}

// Kill drives the escalation state machine for one PID.
func (k *EscalatingKiller) Kill(ctx context.Context, pid int) error {
	if protectedPID(pid) {
		return &KillError{Kind: PermissionDenied, PID: pid, Err: errors.New("refusing to kill protected PID")}
	}

	state := stateRunning
	for {
		switch state {
		case stateRunning:
			if err := k.signals.Terminate(pid); err != nil {
				switch {
				case errors.Is(err, ErrProcessGone):
					return &KillError{Kind: NotFound, PID: pid, Err: err}
				case errors.Is(err, ErrNotPermitted):
					return &KillError{Kind: PermissionDenied, PID: pid, Err: err}
				default:
					return &KillError{Kind: Unknown, PID: pid, Err: err}
				}
			}
			state = stateWaitingGraceful

		case stateWaitingGraceful:
			gone, err := k.waitGone(ctx, pid, k.gracefulTimeout)
			if gone {
				return nil
			}
			// Cancellation aborts the operation outright. Escalating
			// early would cut the graceful window short and force-kill
			// a process that was never given its chance to exit.
			if err != nil {
				return &KillError{Kind: Unknown, PID: pid, Err: err}
			}
			state = stateEscalate

		case stateEscalate:
			// The process may have exited in the window between the
			// last probe and this send; that is success, not failure.
			// SIGKILL is already out, so cancellation during the
			// bounded wait changes nothing.
			_ = k.signals.ForceKill(pid)
			_, _ = k.waitGone(ctx, pid, forcefulWait)
			return nil
		}
	}
}

// waitGone polls process existence until the process disappears, the
// timeout elapses, or ctx is cancelled. It reports whether the process
// is gone; a non-nil error means the wait ended early on cancellation,
// never that the timeout ran out.
func (k *EscalatingKiller) waitGone(ctx context.Context, pid int, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		if errors.Is(k.signals.Alive(pid), ErrProcessGone) {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
