package port

import (
	"strconv"
	"strings"
)

// ParseLsofOutput parses the columnar output of
// lsof -iTCP -sTCP:LISTEN -n -P +c 0 into raw records.
// Each line after the header has fields:
//
//	COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME
//
// With +c 0 the COMMAND column shows the full command name, which may
// itself contain spaces, so the PID is located as the first purely
// numeric whitespace-delimited token and everything before it is the
// command. Lines in any state other than LISTEN are skipped, as are
// lines that do not parse.
func ParseLsofOutput(output string) []RawRecord {
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
		rec, ok := parseLsofLine(line)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// parseLsofLine parses a single lsof data line into a RawRecord.
func parseLsofLine(line string) (RawRecord, bool) {
	if !strings.HasSuffix(line, "(LISTEN)") {
		return RawRecord{}, false
	}

	fields := strings.Fields(line)
	// Shortest well-formed line: command pid user fd type device
	// size/off node name (LISTEN).
	if len(fields) < 10 {
		return RawRecord{}, false
	}

	// The command may contain embedded spaces; the PID is the first
	// purely numeric token.
	pidIdx := -1
	for i := 1; i < len(fields); i++ {
		if _, err := strconv.Atoi(fields[i]); err == nil {
			pidIdx = i
			break
		}
	}
	if pidIdx < 1 {
		return RawRecord{}, false
	}

	pid, err := strconv.Atoi(fields[pidIdx])
	if err != nil || pid <= 0 {
		return RawRecord{}, false
	}

	// NAME is the second-to-last field, before the (LISTEN) suffix.
	addr := fields[len(fields)-2]
	portNum, ok := parseLocalPort(addr)
	if !ok {
		return RawRecord{}, false
	}

	return RawRecord{
		PID:      pid,
		Port:     portNum,
		Command:  strings.Join(fields[:pidIdx], " "),
		Protocol: TCP,
	}, true
}

// parseLocalPort extracts the port from a local address token.
// Handles "*:3000", "127.0.0.1:3000" and "[::1]:3000".
func parseLocalPort(addr string) (int, bool) {
	idx := strings.LastIndex(addr, ":")
	if idx == -1 || idx == len(addr)-1 {
		return 0, false
	}
	portNum, err := strconv.Atoi(addr[idx+1:])
	if err != nil || portNum <= 0 || portNum > 65535 {
		return 0, false
	}
	return portNum, true
}

// ParseLsofCwd parses the output of lsof -d cwd -a -p <pids> into a
// PID -> working directory map. Each data line has fields:
//
//	COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME
//
// where NAME is an absolute path that may contain embedded spaces: once
// the first /-prefixed token after the FD column is found, the rest of
// the line is rejoined as the path.
func ParseLsofCwd(output string) map[int]string {
	dirs := make(map[int]string)
	for i, line := range strings.Split(output, "\n") {
		if i == 0 {
			continue // header
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil || pid <= 0 {
			continue
		}

		pathIdx := -1
		for j := 3; j < len(fields); j++ {
			if strings.HasPrefix(fields[j], "/") {
				pathIdx = j
				break
			}
		}
		if pathIdx == -1 {
			continue
		}
		dirs[pid] = strings.Join(fields[pathIdx:], " ")
	}
	return dirs
}
