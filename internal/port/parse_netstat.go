package port

import (
	"strconv"
	"strings"
)

// ParseNetstatWindows parses the output of netstat -ano into raw
// records. Data lines have fields:
//
//	Proto Local-Address Foreign-Address State PID
//
// Only TCP rows in LISTENING state are kept. netstat exposes no command
// name; the command is filled in by the process-info enrichment step.
func ParseNetstatWindows(output string) []RawRecord {
	var records []RawRecord
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 || fields[3] != "LISTENING" {
			continue
		}
		if !strings.EqualFold(fields[0], "TCP") {
			continue
		}

		portNum, ok := parseLocalPort(fields[1])
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(fields[4])
		if err != nil || pid <= 0 {
			continue
		}

		records = append(records, RawRecord{
			PID:      pid,
			Port:     portNum,
			Protocol: TCP,
		})
	}
	return records
}
