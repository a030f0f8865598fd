package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/portscope/portscope/internal/history"
	"github.com/portscope/portscope/internal/poll"
	"github.com/portscope/portscope/internal/port"
)

var (
	watchInterval int
	watchAlert    bool
	watchRecord   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-refresh port table in terminal",
	Long: `Continuously display listening ports with periodic refresh.

With --alert, monitors for new port listeners that appear after the initial
scan. When a new listener is detected, prints an alert and exits with code 1.
With --record, open/close events are appended to the history file.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "Refresh interval in seconds (0 = config value)")
	watchCmd.Flags().IntVar(&filterPort, "port", 0, "Filter by port number")
	watchCmd.Flags().StringVar(&filterProc, "process", "", "Filter by command substring")
	watchCmd.Flags().BoolVar(&watchAlert, "alert", false, "Alert and exit on new port listeners")
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "Record open/close events to history")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, scanner, _, err := buildStack()
	if err != nil {
		return err
	}

	interval := cfg.RefreshDuration()
	if watchInterval > 0 {
		interval = time.Duration(watchInterval) * time.Second
	}

	if watchAlert {
		return runWatchAlert(scanner, interval)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store *history.Store
	if watchRecord {
		store, err = history.NewStore()
		if err != nil {
			return err
		}
	}

	poller := poll.New(scanner, interval)
	unsubscribe := poller.OnUpdate(func(entries []port.PortEntry) {
		entries = filterEntries(entries, cfg.Exclude)
		renderWatchTable(entries)
		if store != nil {
			if _, err := store.Record(entries, time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	})
	defer unsubscribe()

	poller.Start()
	defer poller.Stop()

	<-ctx.Done()
	if err := poller.LastError(); err != nil {
		fmt.Fprintf(os.Stderr, "Last scan error: %v\n", err)
	}
	fmt.Println("\nStopped watching.")
	return nil
}

func runWatchAlert(scanner port.Scanner, interval time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	baseline, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}
	baselineKeys := makePortKeySet(baseline)

	if !jsonOutput {
		fmt.Printf("Monitoring %d port(s) for new listeners... (interval: %s)\n",
			len(baseline), interval)
	}

	alerts := make(chan []port.PortEntry, 1)
	poller := poll.New(scanner, interval)
	unsubscribe := poller.OnUpdate(func(entries []port.PortEntry) {
		if fresh := findNewEntries(entries, baselineKeys); len(fresh) > 0 {
			select {
			case alerts <- fresh:
			default:
			}
		}
	})
	defer unsubscribe()

	poller.Start()
	defer poller.Stop()

	select {
	case <-ctx.Done():
		if !jsonOutput {
			fmt.Println("\nStopped watching.")
		}
		return nil
	case fresh := <-alerts:
		if jsonOutput {
			return printAlertJSON(fresh)
		}
		return printAlertHuman(fresh)
	}
}

// portKeyStr creates a unique key for identifying a port listener.
func portKeyStr(e port.PortEntry) string {
	return fmt.Sprintf("%d/%s", e.Port, e.Protocol)
}

// makePortKeySet builds a set of port keys from entries.
func makePortKeySet(entries []port.PortEntry) map[string]struct{} {
	keys := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		keys[portKeyStr(e)] = struct{}{}
	}
	return keys
}

// findNewEntries returns entries not present in the baseline set.
func findNewEntries(current []port.PortEntry, baseline map[string]struct{}) []port.PortEntry {
	var fresh []port.PortEntry
	for _, e := range current {
		if _, exists := baseline[portKeyStr(e)]; !exists {
			fresh = append(fresh, e)
		}
	}
	return fresh
}

// alertExitError is returned when --alert detects new ports.
// The CLI should exit with code 1.
type alertExitError struct {
	count int
}

func (e *alertExitError) Error() string {
	return fmt.Sprintf("alert: %d new port listener(s) detected", e.count)
}

func printAlertJSON(entries []port.PortEntry) error {
	type alertEntry struct {
		Port      int    `json:"port"`
		Protocol  string `json:"protocol"`
		PID       int    `json:"pid"`
		Command   string `json:"command"`
		Directory string `json:"directory"`
	}

	type alertOutput struct {
		Alert   string       `json:"alert"`
		Count   int          `json:"count"`
		Entries []alertEntry `json:"entries"`
	}

	out := alertOutput{
		Alert:   "new_port_listeners",
		Count:   len(entries),
		Entries: make([]alertEntry, len(entries)),
	}
	for i, e := range entries {
		out.Entries[i] = alertEntry{
			Port:      e.Port,
			Protocol:  string(e.Protocol),
			PID:       e.PID,
			Command:   e.Command,
			Directory: e.Directory,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode alert JSON: %w", err)
	}

	return &alertExitError{count: len(entries)}
}

func printAlertHuman(entries []port.PortEntry) error {
	fmt.Printf("\nALERT: %d new port listener(s) detected!\n\n", len(entries))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPROTO\tPID\tCOMMAND\tDIRECTORY")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			e.Port, e.Protocol, e.PID, truncateCommand(e.Command, 40), e.Directory)
	}
	w.Flush()

	return &alertExitError{count: len(entries)}
}

func renderWatchTable(entries []port.PortEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Port < entries[j].Port
	})

	// Clear screen.
	fmt.Print("\033[2J\033[H")

	fmt.Printf("portscope watch | Listening: %d | %s | Ctrl+C to stop\n\n",
		len(entries), time.Now().Format("15:04:05"))

	if len(entries) == 0 {
		fmt.Println("No ports found matching filter.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPROTO\tPID\tCOMMAND\tDIRECTORY\tPARENT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			e.Port, e.Protocol, e.PID,
			truncateCommand(e.Command, 40), e.Directory, parentLabel(e))
	}
	w.Flush()
}
