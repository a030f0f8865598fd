package process

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSignaller scripts signal outcomes for the escalation machine.
type fakeSignaller struct {
	termErr error
	killErr error

	// goneAfterProbes is how many Alive calls report the process as
	// still running before it disappears. Negative means it never
	// disappears.
	goneAfterProbes int

	termSent   int
	killSent   int
	aliveCalls int
}

func (f *fakeSignaller) Terminate(pid int) error {
	f.termSent++
	return f.termErr
}

func (f *fakeSignaller) ForceKill(pid int) error {
	f.killSent++
	return f.killErr
}

func (f *fakeSignaller) Alive(pid int) error {
	f.aliveCalls++
	if f.goneAfterProbes >= 0 && f.aliveCalls > f.goneAfterProbes {
		return ErrProcessGone
	}
	return nil
}

func TestKill_GracefulExitSkipsForceKill(t *testing.T) {
	// Gone on the very first existence probe after SIGTERM.
	fake := &fakeSignaller{goneAfterProbes: 0}
	killer := NewEscalatingKiller(fake, 500*time.Millisecond)

	if err := killer.Kill(context.Background(), 4242); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.termSent != 1 {
		t.Errorf("terminate sent %d times, want 1", fake.termSent)
	}
	if fake.killSent != 0 {
		t.Errorf("force kill sent %d times, want 0", fake.killSent)
	}
}

func TestKill_EscalatesAndStillSucceeds(t *testing.T) {
	// Never disappears: the graceful wait elapses, SIGKILL goes out,
	// and the kill is reported successful regardless.
	fake := &fakeSignaller{goneAfterProbes: -1}
	killer := NewEscalatingKiller(fake, 200*time.Millisecond)

	if err := killer.Kill(context.Background(), 4242); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.killSent != 1 {
		t.Errorf("force kill sent %d times, want 1", fake.killSent)
	}
}

func TestKill_ForceKillErrorIgnored(t *testing.T) {
	// The process may exit between the last probe and the SIGKILL
	// send; that send failing is success, not failure.
	fake := &fakeSignaller{goneAfterProbes: -1, killErr: ErrProcessGone}
	killer := NewEscalatingKiller(fake, 200*time.Millisecond)

	if err := killer.Kill(context.Background(), 4242); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKill_NotFound(t *testing.T) {
	fake := &fakeSignaller{termErr: ErrProcessGone}
	killer := NewEscalatingKiller(fake, time.Second)

	err := killer.Kill(context.Background(), 4242)
	var killErr *KillError
	if !errors.As(err, &killErr) {
		t.Fatalf("expected *KillError, got %v", err)
	}
	if killErr.Kind != NotFound {
		t.Errorf("kind: got %v, want NotFound", killErr.Kind)
	}
	if killErr.PID != 4242 {
		t.Errorf("pid: got %d, want 4242", killErr.PID)
	}
}

func TestKill_PermissionDenied(t *testing.T) {
	fake := &fakeSignaller{termErr: ErrNotPermitted}
	killer := NewEscalatingKiller(fake, time.Second)

	err := killer.Kill(context.Background(), 4242)
	var killErr *KillError
	if !errors.As(err, &killErr) {
		t.Fatalf("expected *KillError, got %v", err)
	}
	if killErr.Kind != PermissionDenied {
		t.Errorf("kind: got %v, want PermissionDenied", killErr.Kind)
	}
}

func TestKill_UnexpectedErrorIsUnknown(t *testing.T) {
	fake := &fakeSignaller{termErr: errors.New("signal delivery broken")}
	killer := NewEscalatingKiller(fake, time.Second)

	err := killer.Kill(context.Background(), 4242)
	var killErr *KillError
	if !errors.As(err, &killErr) {
		t.Fatalf("expected *KillError, got %v", err)
	}
	if killErr.Kind != Unknown {
		t.Errorf("kind: got %v, want Unknown", killErr.Kind)
	}
}

func TestKill_CancelledContextAbortsWithoutEscalating(t *testing.T) {
	// Cancelling the caller's context must not shortcut the graceful
	// window into an immediate SIGKILL; the operation aborts instead.
	fake := &fakeSignaller{goneAfterProbes: -1}
	killer := NewEscalatingKiller(fake, 3*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := killer.Kill(ctx, 4242)
	elapsed := time.Since(start)

	var killErr *KillError
	if !errors.As(err, &killErr) {
		t.Fatalf("expected *KillError, got %v", err)
	}
	if killErr.Kind != Unknown {
		t.Errorf("kind: got %v, want Unknown", killErr.Kind)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the context error in the chain, got %v", err)
	}
	if fake.killSent != 0 {
		t.Errorf("force kill sent %d times after cancellation, want 0", fake.killSent)
	}
	if elapsed >= 3*time.Second {
		t.Errorf("kill blocked for the full graceful timeout (%s)", elapsed)
	}
}

func TestKill_RefusesProtectedPIDs(t *testing.T) {
	fake := &fakeSignaller{goneAfterProbes: 0}
	killer := NewEscalatingKiller(fake, time.Second)

	// Zero and negatives are kill(2) broadcast forms, 1 is init.
	for _, pid := range []int{1, 0, -1, -4242} {
		err := killer.Kill(context.Background(), pid)
		var killErr *KillError
		if !errors.As(err, &killErr) {
			t.Fatalf("pid %d: expected *KillError, got %v", pid, err)
		}
		if killErr.Kind != PermissionDenied {
			t.Errorf("pid %d: kind %v, want PermissionDenied", pid, killErr.Kind)
		}
	}
	if fake.termSent != 0 {
		t.Errorf("terminate sent %d times, want 0", fake.termSent)
	}
}

func TestKill_GracefulExitDuringWait(t *testing.T) {
	// Exits after a couple of poll ticks, before the deadline.
	fake := &fakeSignaller{goneAfterProbes: 2}
	killer := NewEscalatingKiller(fake, 2*time.Second)

	start := time.Now()
	if err := killer.Kill(context.Background(), 4242); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 2*time.Second {
		t.Errorf("kill blocked for the full graceful timeout (%s)", elapsed)
	}
	if fake.killSent != 0 {
		t.Errorf("force kill sent %d times, want 0", fake.killSent)
	}
}
