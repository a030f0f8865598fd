package port

import (
	"context"
	"fmt"
	"os"
)

// LinuxScanner discovers listening sockets on Linux using ss (with a
// netstat fallback) and ps. Working directories come from the
// /proc/<pid>/cwd symlink rather than a tool invocation.
type LinuxScanner struct {
	runner CmdRunner

	// readlink is os.Readlink in production; injected in tests.
	readlink func(string) (string, error)
}

// NewLinuxScanner creates a scanner backed by ss, ps and /proc.
func NewLinuxScanner(runner CmdRunner) *LinuxScanner {
	return &LinuxScanner{runner: runner, readlink: os.Readlink}
}

// Scan runs the pipeline: list sockets via ss -tlnp, falling back to
// netstat -tlnp when ss fails; then per-PID cwd symlink reads and
// batched ps lookups, each best-effort.
func (s *LinuxScanner) Scan(ctx context.Context) ([]PortEntry, error) {
	records, err := s.listSockets(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	pids := distinctPIDs(records)

	// The one per-PID exception to batching: a symlink read per
	// process, each failure independently ignored.
	dirs := make(map[int]string, len(pids))
	for _, pid := range pids {
		if cwd, err := s.readlink(fmt.Sprintf("/proc/%d/cwd", pid)); err == nil && cwd != "" {
			dirs[pid] = cwd
		}
	}

	pidList := joinPIDs(pids)

	var procs map[int]ProcessDescriptor
	if psOut, err := s.runner.Run(ctx, "ps", "-p", pidList, "-o", "pid=,ppid=,args="); err == nil {
		procs = ParseProcessTable(string(psOut))
	}

	var parents map[int]string
	if ppids := distinctParentPIDs(pids, procs); len(ppids) > 0 {
		if out, err := s.runner.Run(ctx, "ps", "-p", joinPIDs(ppids), "-o", "pid=,args="); err == nil {
			parents = ParseCommandTable(string(out))
		}
	}

	return Enrich(records, dirs, procs, parents), nil
}

func (s *LinuxScanner) listSockets(ctx context.Context) ([]RawRecord, error) {
	out, err := s.runner.Run(ctx, "ss", "-tlnp")
	if err == nil {
		return ParseSSOutput(string(out)), nil
	}
	if IsTimeout(err) {
		return nil, scanFailure(err)
	}

	out, err = s.runner.Run(ctx, "netstat", "-tlnp")
	if err != nil {
		return nil, scanFailure(err)
	}
	return ParseNetstatLinux(string(out)), nil
}
