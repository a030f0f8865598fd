package port

import (
	"strconv"
	"strings"
)

// ParseSSOutput parses the output of ss -tlnp into raw records.
// Each data line has fields:
//
//	State Recv-Q Send-Q Local Address:Port Peer Address:Port Process
//
// where Process looks like users:(("nginx",pid=1234,fd=6)). Rows in any
// state other than LISTEN are skipped, as are rows without a resolvable
// PID (ss omits the process column without sufficient privileges).
func ParseSSOutput(output string) []RawRecord {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return nil
	}

	var records []RawRecord
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] != "LISTEN" {
			continue
		}

		portNum, ok := parseLocalPort(fields[3])
		if !ok {
			continue
		}

		command, pid, ok := parseSSProcess(fields[5])
		if !ok {
			continue
		}

		records = append(records, RawRecord{
			PID:      pid,
			Port:     portNum,
			Command:  command,
			Protocol: TCP,
		})
	}
	return records
}

// parseSSProcess extracts the command name and PID from an ss process
// column like users:(("nginx",pid=1234,fd=6)).
func parseSSProcess(field string) (string, int, bool) {
	pidIdx := strings.Index(field, "pid=")
	if pidIdx == -1 {
		return "", 0, false
	}
	rest := field[pidIdx+len("pid="):]
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return "", 0, false
	}
	if end == -1 {
		end = len(rest)
	}
	pid, err := strconv.Atoi(rest[:end])
	if err != nil || pid <= 0 {
		return "", 0, false
	}

	command := ""
	if start := strings.Index(field, `(("`); start != -1 {
		tail := field[start+3:]
		if stop := strings.Index(tail, `"`); stop != -1 {
			command = tail[:stop]
		}
	}
	return command, pid, true
}

// ParseNetstatLinux parses the output of netstat -tlnp, the fallback
// when ss is unavailable. Data lines have fields:
//
//	Proto Recv-Q Send-Q Local Address Foreign Address State PID/Program
//
// Rows not in LISTEN state or without a PID/Program column (shown as
// "-" without privileges) are skipped.
func ParseNetstatLinux(output string) []RawRecord {
	var records []RawRecord
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 7 || fields[5] != "LISTEN" {
			continue
		}

		portNum, ok := parseLocalPort(fields[3])
		if !ok {
			continue
		}

		pidProg := strings.SplitN(fields[6], "/", 2)
		pid, err := strconv.Atoi(pidProg[0])
		if err != nil || pid <= 0 {
			continue
		}
		command := ""
		if len(pidProg) == 2 {
			command = pidProg[1]
		}

		records = append(records, RawRecord{
			PID:      pid,
			Port:     portNum,
			Command:  command,
			Protocol: TCP,
		})
	}
	return records
}
