package port

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Scanner discovers listening sockets and their owning processes.
type Scanner interface {
	Scan(ctx context.Context) ([]PortEntry, error)
}

// CmdRunner abstracts shell command execution for testability.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns the scanner for the running operating system.
func New(runner CmdRunner) (Scanner, error) {
	return forGOOS(runtime.GOOS, runner)
}

func forGOOS(goos string, runner CmdRunner) (Scanner, error) {
	switch goos {
	case "darwin":
		return NewDarwinScanner(runner), nil
	case "linux":
		return NewLinuxScanner(runner), nil
	case "windows":
		return NewWindowsScanner(runner), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// joinPIDs renders a PID set as the comma-separated list accepted by
// ps -p and lsof -p.
func joinPIDs(pids []int) string {
	strs := make([]string, len(pids))
	for i, pid := range pids {
		strs[i] = strconv.Itoa(pid)
	}
	return strings.Join(strs, ",")
}
