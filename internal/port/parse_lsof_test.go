package port

import (
	"testing"
)

func TestParseLsofOutput(t *testing.T) {
	input := `COMMAND     PID      USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
nginx      1234      root    6u  IPv4 0x1234567890      0t0  TCP *:80 (LISTEN)
nginx      1234      root    7u  IPv4 0x1234567891      0t0  TCP *:443 (LISTEN)
node       5678     kenji    8u  IPv6 0x1234567892      0t0  TCP *:3000 (LISTEN)
postgres   9012 _postgres    9u  IPv4 0x1234567893      0t0  TCP 127.0.0.1:5432 (LISTEN)
java       3456     kenji   10u  IPv6 0x1234567894      0t0  TCP [::1]:8080 (LISTEN)
`

	records := ParseLsofOutput(input)

	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	tests := []struct {
		idx     int
		command string
		pid     int
		port    int
	}{
		{0, "nginx", 1234, 80},
		{1, "nginx", 1234, 443},
		{2, "node", 5678, 3000},
		{3, "postgres", 9012, 5432},
		{4, "java", 3456, 8080},
	}

	for _, tt := range tests {
		r := records[tt.idx]
		if r.Command != tt.command {
			t.Errorf("[%d] command: got %q, want %q", tt.idx, r.Command, tt.command)
		}
		if r.PID != tt.pid {
			t.Errorf("[%d] pid: got %d, want %d", tt.idx, r.PID, tt.pid)
		}
		if r.Port != tt.port {
			t.Errorf("[%d] port: got %d, want %d", tt.idx, r.Port, tt.port)
		}
		if r.Protocol != TCP {
			t.Errorf("[%d] protocol: got %q, want TCP", tt.idx, r.Protocol)
		}
	}
}

func TestParseLsofOutput_CommandWithSpaces(t *testing.T) {
	// With +c 0 the command column holds the full name, which may
	// contain spaces; the PID is the first purely numeric token.
	input := `COMMAND     PID      USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
Google Chrome Helper  4242  kenji  20u  IPv4 0x1234567890  0t0  TCP 127.0.0.1:9222 (LISTEN)
`

	records := ParseLsofOutput(input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Command != "Google Chrome Helper" {
		t.Errorf("command: got %q, want %q", r.Command, "Google Chrome Helper")
	}
	if r.PID != 4242 {
		t.Errorf("pid: got %d, want 4242", r.PID)
	}
	if r.Port != 9222 {
		t.Errorf("port: got %d, want 9222", r.Port)
	}
}

func TestParseLsofOutput_SkipsNonListen(t *testing.T) {
	input := `COMMAND     PID      USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
chrome     1111     kenji   20u  IPv4 0x1234567890      0t0  TCP 192.168.1.10:54321->93.184.216.34:443 (ESTABLISHED)
node       5678     kenji    8u  IPv6 0x1234567892      0t0  TCP *:3000 (LISTEN)
garbage line that does not parse
`

	records := ParseLsofOutput(input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].PID != 5678 || records[0].Port != 3000 {
		t.Errorf("got pid=%d port=%d, want pid=5678 port=3000", records[0].PID, records[0].Port)
	}
}

func TestParseLsofOutput_EmptyInput(t *testing.T) {
	if records := ParseLsofOutput(""); len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestParseLsofOutput_HeaderOnly(t *testing.T) {
	input := `COMMAND     PID      USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
`
	if records := ParseLsofOutput(input); len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestParseLocalPort(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		wantPort int
		wantOK   bool
	}{
		{"wildcard", "*:8080", 8080, true},
		{"ipv4", "127.0.0.1:3000", 3000, true},
		{"ipv6", "[::1]:8443", 8443, true},
		{"ipv6 scoped", "[fe80::1%lo0]:9000", 9000, true},
		{"wildcard port", "*:*", 0, false},
		{"no colon", "8080", 0, false},
		{"out of range", "*:70000", 0, false},
		{"zero", "*:0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portNum, ok := parseLocalPort(tt.addr)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if portNum != tt.wantPort {
				t.Errorf("port: got %d, want %d", portNum, tt.wantPort)
			}
		})
	}
}

func TestParseLsofCwd(t *testing.T) {
	input := `COMMAND   PID  USER   FD   TYPE DEVICE SIZE/OFF     NODE NAME
node     1234 kenji  cwd    DIR    1,4      416 12345678 /srv/app
python3  5678 kenji  cwd    DIR    1,4      512 87654321 /Users/kenji/My Projects/api
`

	dirs := ParseLsofCwd(input)
	if len(dirs) != 2 {
		t.Fatalf("expected 2 directories, got %d", len(dirs))
	}
	if dirs[1234] != "/srv/app" {
		t.Errorf("pid 1234: got %q, want /srv/app", dirs[1234])
	}
	// Paths with embedded spaces are rejoined.
	if dirs[5678] != "/Users/kenji/My Projects/api" {
		t.Errorf("pid 5678: got %q, want /Users/kenji/My Projects/api", dirs[5678])
	}
}

func TestParseLsofCwd_Empty(t *testing.T) {
	if dirs := ParseLsofCwd(""); len(dirs) != 0 {
		t.Errorf("expected empty map, got %v", dirs)
	}
}
