package port

import "fmt"

// Protocol represents a network protocol.
type Protocol string

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

// UnknownDirectory is the sentinel stored when a process's working
// directory cannot be determined.
const UnknownDirectory = "Unknown"

// RawRecord is a single listening socket as reported by the platform
// tool, before enrichment. It never leaves this package.
type RawRecord struct {
	PID      int
	Port     int
	Command  string
	Protocol Protocol
}

// ProcessDescriptor holds the full command line and parent PID resolved
// for a single process. ParentPID is 0 when unknown.
type ProcessDescriptor struct {
	Command   string
	ParentPID int
}

// PortEntry represents one listening socket merged with its process
// metadata. Entries are value objects built fresh on every scan.
type PortEntry struct {
	PID           int
	Port          int
	Command       string // full command line when resolvable, tool value otherwise
	Directory     string // working directory, or UnknownDirectory
	Protocol      Protocol
	ParentPID     int    // 0 when unknown
	ParentCommand string // empty when the parent could not be resolved
}

// String returns a human-readable representation of the entry.
func (e PortEntry) String() string {
	return fmt.Sprintf("%d/%s (PID %d, %s)", e.Port, e.Protocol, e.PID, e.Command)
}
