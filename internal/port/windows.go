package port

import (
	"context"
	"fmt"
	"strings"
)

// WindowsScanner discovers listening sockets on Windows using netstat.
// Process metadata comes from a batched PowerShell CIM query, with wmic
// as the fallback on hosts where PowerShell is restricted. Windows has
// no practical way to expose another process's working directory, so
// Directory is always UnknownDirectory here.
type WindowsScanner struct {
	runner CmdRunner
}

// NewWindowsScanner creates a scanner backed by netstat and the CIM
// process query.
func NewWindowsScanner(runner CmdRunner) *WindowsScanner {
	return &WindowsScanner{runner: runner}
}

// Scan lists LISTENING TCP sockets via netstat -ano, then resolves
// command lines and parent PIDs with one batched query for the PID set
// and one for the parent-PID set. Both lookups are best-effort.
func (s *WindowsScanner) Scan(ctx context.Context) ([]PortEntry, error) {
	out, err := s.runner.Run(ctx, "netstat", "-ano")
	if err != nil {
		return nil, scanFailure(err)
	}

	records := ParseNetstatWindows(string(out))
	if len(records) == 0 {
		return nil, nil
	}

	pids := distinctPIDs(records)
	procs := s.queryProcesses(ctx, pids)

	var parents map[int]string
	if ppids := distinctParentPIDs(pids, procs); len(ppids) > 0 {
		parents = make(map[int]string)
		for pid, desc := range s.queryProcesses(ctx, ppids) {
			parents[pid] = desc.Command
		}
	}

	return Enrich(records, nil, procs, parents), nil
}

// queryProcesses resolves command lines and parent PIDs for a PID set
// in a single external call. PowerShell's Get-CimInstance is the
// primary source; wmic is the documented fallback. Failure of both
// returns nil, leaving the raw records unenriched.
func (s *WindowsScanner) queryProcesses(ctx context.Context, pids []int) map[int]ProcessDescriptor {
	script := fmt.Sprintf(
		`Get-CimInstance Win32_Process -Filter '%s' | ForEach-Object { '{0} {1} {2}' -f $_.ProcessId, $_.ParentProcessId, $_.CommandLine }`,
		cimPIDFilter(pids))
	if out, err := s.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script); err == nil {
		if procs := ParseProcessTable(string(out)); len(procs) > 0 {
			return procs
		}
	}

	out, err := s.runner.Run(ctx, "wmic", "process", "where", wmicPIDFilter(pids),
		"get", "ProcessId,ParentProcessId,CommandLine", "/format:list")
	if err != nil {
		return nil
	}
	return ParseWmicList(string(out))
}

func cimPIDFilter(pids []int) string {
	terms := make([]string, len(pids))
	for i, pid := range pids {
		terms[i] = fmt.Sprintf("ProcessId=%d", pid)
	}
	return strings.Join(terms, " OR ")
}

func wmicPIDFilter(pids []int) string {
	terms := make([]string, len(pids))
	for i, pid := range pids {
		terms[i] = fmt.Sprintf("ProcessId=%d", pid)
	}
	return "(" + strings.Join(terms, " or ") + ")"
}
