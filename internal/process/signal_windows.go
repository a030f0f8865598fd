//go:build windows

package process

import (
	"time"

	"github.com/portscope/portscope/internal/port"
)

func defaultKiller(runner port.CmdRunner, _ time.Duration) Killer {
	return NewTaskkillKiller(runner)
}
