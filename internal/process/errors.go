package process

import "fmt"

// KillErrorKind classifies why a termination failed.
type KillErrorKind int

const (
	// NotFound means no process with the given PID exists.
	NotFound KillErrorKind = iota
	// PermissionDenied means the caller may not signal the process.
	PermissionDenied
	// Unknown covers every other failure.
	Unknown
)

func (k KillErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("kill error(%d)", int(k))
	}
}

// KillError is the only error type a Killer returns.
type KillError struct {
	Kind KillErrorKind
	PID  int
	Err  error
}

func (e *KillError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("kill pid %d: %s", e.PID, e.Kind)
	}
	return fmt.Sprintf("kill pid %d: %s: %v", e.PID, e.Kind, e.Err)
}

func (e *KillError) Unwrap() error { return e.Err }
