package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/portscope/portscope/internal/port"
	"github.com/portscope/portscope/internal/process"
)

var killByPID bool

var killCmd = &cobra.Command{
	Use:   "kill <port>",
	Short: "Terminate the process listening on a port",
	Long: `Terminate the process listening on the specified port. The process is
asked to exit gracefully first; if it has not exited within the graceful
timeout it is killed forcefully. With --pid the argument is treated as a
process ID instead of a port number.`,
	Args: cobra.ExactArgs(1),
	RunE: runKill,
}

func init() {
	killCmd.Flags().BoolVar(&killByPID, "pid", false, "Treat the argument as a PID instead of a port")
}

func runKill(cmd *cobra.Command, args []string) error {
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	_, scanner, killer, err := buildStack()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var targets []port.PortEntry
	if killByPID {
		targets = []port.PortEntry{{PID: num}}
	} else {
		entries, err := scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan ports: %w", err)
		}
		seen := map[int]bool{}
		for _, e := range entries {
			if e.Port == num && !seen[e.PID] {
				seen[e.PID] = true
				targets = append(targets, e)
			}
		}
		if len(targets) == 0 {
			return fmt.Errorf("no process listening on port %d", num)
		}
	}

	for _, e := range targets {
		if e.Command != "" {
			fmt.Printf("Killing %s (PID %d)...\n", truncateCommand(e.Command, 40), e.PID)
		} else {
			fmt.Printf("Killing PID %d...\n", e.PID)
		}

		err := killer.Kill(ctx, e.PID)
		var killErr *process.KillError
		switch {
		case err == nil:
			fmt.Printf("PID %d terminated.\n", e.PID)
		case errors.As(err, &killErr) && killErr.Kind == process.NotFound:
			// Already gone; the listener is freed either way.
			fmt.Printf("PID %d was already gone.\n", e.PID)
		default:
			return err
		}
	}

	return nil
}
