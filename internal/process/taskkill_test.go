package process

import (
	"context"
	"errors"
	"testing"

	"github.com/portscope/portscope/internal/port"
)

func TestTaskkill_Success(t *testing.T) {
	runner := &port.MockCmdRunner{Output: []byte("SUCCESS: The process with PID 5120 has been terminated.\r\n")}
	killer := NewTaskkillKiller(runner)

	if err := killer.Kill(context.Background(), 5120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskkill_Classification(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   KillErrorKind
	}{
		{
			name:   "not found",
			output: `ERROR: The process "5120" not found.`,
			want:   NotFound,
		},
		{
			name:   "access denied",
			output: "ERROR: The process with PID 5120 could not be terminated.\r\nReason: Access is denied.",
			want:   PermissionDenied,
		},
		{
			name:   "anything else",
			output: "ERROR: The service cannot accept control messages at this time.",
			want:   Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &port.MockCmdRunner{
				Output: []byte(tt.output),
				Err:    errors.New("exit status 1"),
			}
			err := NewTaskkillKiller(runner).Kill(context.Background(), 5120)

			var killErr *KillError
			if !errors.As(err, &killErr) {
				t.Fatalf("expected *KillError, got %v", err)
			}
			if killErr.Kind != tt.want {
				t.Errorf("kind: got %v, want %v", killErr.Kind, tt.want)
			}
			if killErr.PID != 5120 {
				t.Errorf("pid: got %d, want 5120", killErr.PID)
			}
		})
	}
}

func TestTaskkill_RefusesProtectedPIDs(t *testing.T) {
	runner := &port.MockCmdRunner{}
	killer := NewTaskkillKiller(runner)

	for _, pid := range []int{1, 0, -1} {
		err := killer.Kill(context.Background(), pid)

		var killErr *KillError
		if !errors.As(err, &killErr) {
			t.Fatalf("pid %d: expected *KillError, got %v", pid, err)
		}
		if killErr.Kind != PermissionDenied {
			t.Errorf("pid %d: kind %v, want PermissionDenied", pid, killErr.Kind)
		}
	}
}
