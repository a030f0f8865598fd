package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portscope/portscope/internal/port"
)

var (
	filterPort int
	filterProc string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all listening ports",
	Long:  "Display a table of all TCP ports currently held open by listening processes.",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&filterPort, "port", 0, "Filter by port number")
	listCmd.Flags().StringVar(&filterProc, "process", "", "Filter by command substring")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, scanner, _, err := buildStack()
	if err != nil {
		return err
	}

	entries, err := scanner.Scan(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	entries = filterEntries(entries, cfg.Exclude)

	// Sort by port number.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Port < entries[j].Port
	})

	if jsonOutput {
		return printJSON(entries)
	}

	return printTable(entries)
}

func filterEntries(entries []port.PortEntry, exclude []string) []port.PortEntry {
	var filtered []port.PortEntry
	for _, e := range entries {
		if filterPort > 0 && e.Port != filterPort {
			continue
		}
		if filterProc != "" && !strings.Contains(strings.ToLower(e.Command), strings.ToLower(filterProc)) {
			continue
		}
		if excluded(e, exclude) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func excluded(e port.PortEntry, exclude []string) bool {
	for _, pat := range exclude {
		if pat != "" && strings.Contains(strings.ToLower(e.Command), strings.ToLower(pat)) {
			return true
		}
	}
	return false
}

func printTable(entries []port.PortEntry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPROTO\tPID\tCOMMAND\tDIRECTORY\tPARENT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			e.Port, e.Protocol, e.PID,
			truncateCommand(e.Command, 40),
			e.Directory,
			parentLabel(e))
	}
	return w.Flush()
}

func parentLabel(e port.PortEntry) string {
	if e.ParentPID <= 0 {
		return "-"
	}
	if e.ParentCommand == "" {
		return fmt.Sprintf("%d", e.ParentPID)
	}
	return fmt.Sprintf("%d %s", e.ParentPID, truncateCommand(e.ParentCommand, 24))
}

func truncateCommand(cmd string, maxLen int) string {
	if len(cmd) <= maxLen {
		return cmd
	}
	return cmd[:maxLen-3] + "..."
}

func printJSON(entries []port.PortEntry) error {
	type jsonEntry struct {
		Port          int    `json:"port"`
		Protocol      string `json:"protocol"`
		PID           int    `json:"pid"`
		Command       string `json:"command"`
		Directory     string `json:"directory"`
		ParentPID     int    `json:"parent_pid,omitempty"`
		ParentCommand string `json:"parent_command,omitempty"`
	}

	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{
			Port:          e.Port,
			Protocol:      string(e.Protocol),
			PID:           e.PID,
			Command:       e.Command,
			Directory:     e.Directory,
			ParentPID:     e.ParentPID,
			ParentCommand: e.ParentCommand,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
