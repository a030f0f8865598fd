package port

import (
	"strconv"
	"strings"
)

// ParseProcessTable parses lines of the form "PID PPID COMMAND..." as
// produced by ps -p <pids> -o pid=,ppid=,command= (or args= on Linux,
// or the PowerShell process query on Windows). The command may contain
// arguments with embedded spaces; everything after the second token is
// rejoined. Lines with fewer than three tokens are skipped.
func ParseProcessTable(output string) map[int]ProcessDescriptor {
	procs := make(map[int]ProcessDescriptor)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid <= 0 {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil || ppid < 0 {
			continue
		}
		procs[pid] = ProcessDescriptor{
			Command:   strings.Join(fields[2:], " "),
			ParentPID: ppid,
		}
	}
	return procs
}

// ParseCommandTable parses lines of the form "PID COMMAND..." as
// produced by ps -p <pids> -o pid=,command=. Lines with fewer than two
// tokens are skipped.
func ParseCommandTable(output string) map[int]string {
	commands := make(map[int]string)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid <= 0 {
			continue
		}
		commands[pid] = strings.Join(fields[1:], " ")
	}
	return commands
}

// ParseWmicList parses wmic /format:list output, the Windows fallback
// process query. Blocks are separated by blank lines and contain
// Key=Value pairs:
//
//	CommandLine=C:\nginx\nginx.exe -p C:\srv
//	ParentProcessId=4
//	ProcessId=1234
//
// Blocks without a ProcessId are skipped.
func ParseWmicList(output string) map[int]ProcessDescriptor {
	procs := make(map[int]ProcessDescriptor)

	flush := func(block map[string]string) {
		pid, err := strconv.Atoi(block["ProcessId"])
		if err != nil || pid <= 0 {
			return
		}
		ppid, err := strconv.Atoi(block["ParentProcessId"])
		if err != nil || ppid < 0 {
			ppid = 0
		}
		procs[pid] = ProcessDescriptor{
			Command:   block["CommandLine"],
			ParentPID: ppid,
		}
	}

	block := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			if len(block) > 0 {
				flush(block)
				block = make(map[string]string)
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		block[key] = strings.TrimSpace(value)
	}
	if len(block) > 0 {
		flush(block)
	}
	return procs
}
