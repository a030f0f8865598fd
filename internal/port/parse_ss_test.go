package port

import "testing"

func TestParseSSOutput(t *testing.T) {
	input := `State      Recv-Q     Send-Q         Local Address:Port          Peer Address:Port     Process
LISTEN     0          128                  0.0.0.0:22                 0.0.0.0:*         users:(("sshd",pid=812,fd=3))
LISTEN     0          511                        *:80                       *:*         users:(("nginx",pid=1234,fd=6),("nginx",pid=1235,fd=6))
LISTEN     0          4096               127.0.0.1:5432               0.0.0.0:*         users:(("postgres",pid=2001,fd=5))
LISTEN     0          511                     [::]:80                    [::]:*         users:(("nginx",pid=1234,fd=7))
ESTAB      0          0              192.168.1.10:43210         93.184.216.34:443       users:(("curl",pid=9999,fd=5))
`

	records := ParseSSOutput(input)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	tests := []struct {
		idx     int
		command string
		pid     int
		port    int
	}{
		{0, "sshd", 812, 22},
		{1, "nginx", 1234, 80},
		{2, "postgres", 2001, 5432},
		{3, "nginx", 1234, 80}, // IPv6 duplicate, removed later by Enrich
	}

	for _, tt := range tests {
		r := records[tt.idx]
		if r.Command != tt.command || r.PID != tt.pid || r.Port != tt.port {
			t.Errorf("[%d] got %q/%d/%d, want %q/%d/%d",
				tt.idx, r.Command, r.PID, r.Port, tt.command, tt.pid, tt.port)
		}
	}
}

func TestParseSSOutput_SkipsRowsWithoutProcess(t *testing.T) {
	// Without privileges ss omits the process column entirely.
	input := `State      Recv-Q     Send-Q         Local Address:Port          Peer Address:Port     Process
LISTEN     0          128                  0.0.0.0:22                 0.0.0.0:*
`

	if records := ParseSSOutput(input); len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestParseSSOutput_HeaderOnly(t *testing.T) {
	input := "State      Recv-Q     Send-Q         Local Address:Port          Peer Address:Port     Process\n"
	if records := ParseSSOutput(input); len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestParseNetstatLinux(t *testing.T) {
	input := `Active Internet connections (only servers)
Proto Recv-Q Send-Q Local Address           Foreign Address         State       PID/Program name
tcp        0      0 0.0.0.0:22              0.0.0.0:*               LISTEN      812/sshd
tcp        0      0 127.0.0.1:6379          0.0.0.0:*               LISTEN      1500/redis-server
tcp6       0      0 :::80                   :::*                    LISTEN      1234/nginx
tcp        0      0 0.0.0.0:25              0.0.0.0:*               LISTEN      -
`

	records := ParseNetstatLinux(input)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	tests := []struct {
		idx     int
		command string
		pid     int
		port    int
	}{
		{0, "sshd", 812, 22},
		{1, "redis-server", 1500, 6379},
		{2, "nginx", 1234, 80},
	}

	for _, tt := range tests {
		r := records[tt.idx]
		if r.Command != tt.command || r.PID != tt.pid || r.Port != tt.port {
			t.Errorf("[%d] got %q/%d/%d, want %q/%d/%d",
				tt.idx, r.Command, r.PID, r.Port, tt.command, tt.pid, tt.port)
		}
	}
}
