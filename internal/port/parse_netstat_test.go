package port

import "testing"

func TestParseNetstatWindows(t *testing.T) {
	input := `
Active Connections

  Proto  Local Address          Foreign Address        State           PID
  TCP    0.0.0.0:135            0.0.0.0:0              LISTENING       888
  TCP    0.0.0.0:445            0.0.0.0:0              LISTENING       4
  TCP    127.0.0.1:8080         0.0.0.0:0              LISTENING       5120
  TCP    192.168.1.10:49723     40.99.10.1:443         ESTABLISHED     6120
  TCP    [::]:135               [::]:0                 LISTENING       888
  UDP    0.0.0.0:5353           *:*                                    2044
`

	records := ParseNetstatWindows(input)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	tests := []struct {
		idx  int
		pid  int
		port int
	}{
		{0, 888, 135},
		{1, 4, 445},
		{2, 5120, 8080},
		{3, 888, 135}, // IPv6 duplicate, removed later by Enrich
	}

	for _, tt := range tests {
		r := records[tt.idx]
		if r.PID != tt.pid || r.Port != tt.port {
			t.Errorf("[%d] got pid=%d port=%d, want pid=%d port=%d",
				tt.idx, r.PID, r.Port, tt.pid, tt.port)
		}
		if r.Command != "" {
			t.Errorf("[%d] command: got %q, want empty (netstat exposes none)", tt.idx, r.Command)
		}
		if r.Protocol != TCP {
			t.Errorf("[%d] protocol: got %q, want TCP", tt.idx, r.Protocol)
		}
	}
}

func TestParseNetstatWindows_Empty(t *testing.T) {
	if records := ParseNetstatWindows(""); len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}
