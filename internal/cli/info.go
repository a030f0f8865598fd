package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/portscope/portscope/internal/port"
)

var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Detailed info about a port and its process",
	Long:  "Display the process, working directory and parent process behind the specified listening port.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	portNum, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	_, scanner, _, err := buildStack()
	if err != nil {
		return err
	}

	entries, err := scanner.Scan(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	var target *port.PortEntry
	for _, e := range entries {
		if e.Port == portNum {
			target = &e
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no process found on port %d", portNum)
	}

	if jsonOutput {
		return printInfoJSON(target)
	}
	return printInfoHuman(target)
}

func printInfoHuman(e *port.PortEntry) error {
	fmt.Printf("Port:        %d/%s\n", e.Port, e.Protocol)
	fmt.Printf("PID:         %d\n", e.PID)
	fmt.Printf("Command:     %s\n", e.Command)
	fmt.Printf("Directory:   %s\n", e.Directory)
	if e.ParentPID > 0 {
		fmt.Printf("Parent PID:  %d\n", e.ParentPID)
		if e.ParentCommand != "" {
			fmt.Printf("Parent:      %s\n", e.ParentCommand)
		}
	}
	return nil
}

func printInfoJSON(e *port.PortEntry) error {
	type jsonInfo struct {
		Port          int    `json:"port"`
		Protocol      string `json:"protocol"`
		PID           int    `json:"pid"`
		Command       string `json:"command"`
		Directory     string `json:"directory"`
		ParentPID     int    `json:"parent_pid,omitempty"`
		ParentCommand string `json:"parent_command,omitempty"`
	}

	out := jsonInfo{
		Port:          e.Port,
		Protocol:      string(e.Protocol),
		PID:           e.PID,
		Command:       e.Command,
		Directory:     e.Directory,
		ParentPID:     e.ParentPID,
		ParentCommand: e.ParentCommand,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
