package port

import "fmt"

// ScanErrorKind classifies why a scan failed.
type ScanErrorKind int

const (
	// CommandFailed means the mandatory socket-listing command exited
	// non-zero or could not be executed.
	CommandFailed ScanErrorKind = iota
	// ParseFailed means the tool output was systemically unusable.
	// Per-line malformed input is skipped silently and never raises this.
	ParseFailed
	// Timeout means a command exceeded the execution deadline.
	Timeout
)

func (k ScanErrorKind) String() string {
	switch k {
	case CommandFailed:
		return "command failed"
	case ParseFailed:
		return "parse error"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("scan error(%d)", int(k))
	}
}

// ScanError is the only error type a Scanner returns.
type ScanError struct {
	Kind ScanErrorKind
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// scanFailure wraps a command execution error into a ScanError,
// distinguishing timeouts from ordinary failures.
func scanFailure(err error) *ScanError {
	if IsTimeout(err) {
		return &ScanError{Kind: Timeout, Err: err}
	}
	return &ScanError{Kind: CommandFailed, Err: err}
}
