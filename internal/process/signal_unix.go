//go:build !windows

package process

import (
	"errors"
	"syscall"
	"time"

	"github.com/portscope/portscope/internal/port"
)

// sysSignaller signals real processes via kill(2). Signal 0 is the
// zero-effect existence probe.
type sysSignaller struct{}

func (sysSignaller) Terminate(pid int) error { return classify(syscall.Kill(pid, syscall.SIGTERM)) }
func (sysSignaller) ForceKill(pid int) error { return classify(syscall.Kill(pid, syscall.SIGKILL)) }
func (sysSignaller) Alive(pid int) error     { return classify(syscall.Kill(pid, 0)) }

// classify folds errno values into the stable sentinels the escalation
// machine branches on.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syscall.ESRCH):
		return ErrProcessGone
	case errors.Is(err, syscall.EPERM):
		return ErrNotPermitted
	default:
		return err
	}
}

func defaultKiller(_ port.CmdRunner, gracefulTimeout time.Duration) Killer {
	return NewEscalatingKiller(sysSignaller{}, gracefulTimeout)
}
