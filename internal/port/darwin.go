package port

import "context"

// DarwinScanner discovers listening sockets on macOS using lsof and ps.
// It compiles on every platform so it can be tested against canned tool
// output anywhere.
type DarwinScanner struct {
	runner CmdRunner
}

// NewDarwinScanner creates a scanner backed by lsof and ps.
func NewDarwinScanner(runner CmdRunner) *DarwinScanner {
	return &DarwinScanner{runner: runner}
}

// Scan runs the four-step pipeline: list sockets (mandatory), then
// batched working-directory, process-info and parent-command lookups,
// each best-effort. Enrichment failures leave the affected fields at
// their defaults rather than failing the scan.
func (s *DarwinScanner) Scan(ctx context.Context) ([]PortEntry, error) {
	out, err := s.runner.Run(ctx, "lsof", "-iTCP", "-sTCP:LISTEN", "-n", "-P", "+c", "0")
	if err != nil {
		return nil, scanFailure(err)
	}

	records := ParseLsofOutput(string(out))
	if len(records) == 0 {
		return nil, nil
	}

	pids := distinctPIDs(records)
	pidList := joinPIDs(pids)

	var dirs map[int]string
	if cwdOut, err := s.runner.Run(ctx, "lsof", "-d", "cwd", "-a", "-p", pidList); err == nil {
		dirs = ParseLsofCwd(string(cwdOut))
	}

	var procs map[int]ProcessDescriptor
	if psOut, err := s.runner.Run(ctx, "ps", "-p", pidList, "-o", "pid=,ppid=,command="); err == nil {
		procs = ParseProcessTable(string(psOut))
	}

	var parents map[int]string
	if ppids := distinctParentPIDs(pids, procs); len(ppids) > 0 {
		if out, err := s.runner.Run(ctx, "ps", "-p", joinPIDs(ppids), "-o", "pid=,command="); err == nil {
			parents = ParseCommandTable(string(out))
		}
	}

	return Enrich(records, dirs, procs, parents), nil
}
