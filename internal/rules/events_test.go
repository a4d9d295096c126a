package rules

import (
	"testing"
	"time"

	"github.com/adnanq/wlandiag/internal/telemetry"
)

func TestEvaluateAuthEvents(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  int
	}{
		{
			name:  "no events",
			types: nil,
			want:  0,
		},
		{
			name:  "benign events",
			types: []string{"client_connect", "client_roam"},
			want:  0,
		},
		{
			name:  "radius failure",
			types: []string{"radius_failure"},
			want:  1,
		},
		{
			name:  "all failure variants match",
			types: []string{"auth_failed", "eap_failure", "802_1x_failure", "dot1x_failure", "psk_failure"},
			want:  5,
		},
		{
			name:  "prefixed type still matches",
			types: []string{"client_auth_failed_wpa"},
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []telemetry.ClientEvent
			for _, typ := range tt.types {
				events = append(events, telemetry.ClientEvent{Type: typ})
			}
			findings := EvaluateAuthEvents(events)
			if len(findings) != tt.want {
				t.Fatalf("got %d findings, want %d: %+v", len(findings), tt.want, findings)
			}
			for _, f := range findings {
				if f.Category != CategoryAuth || f.Severity != SeverityCritical {
					t.Errorf("finding = %+v, want critical auth", f)
				}
			}
		})
	}
}

func TestEvaluateNetworkEvents(t *testing.T) {
	events := []telemetry.ClientEvent{
		{Type: "dhcp_timeout"},
		{Type: "client_info", Text: "dns_failure resolving corp domain"},
		{Type: "client_connect"},
	}

	findings := EvaluateNetworkEvents(events)
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(findings), findings)
	}
	for _, f := range findings {
		if f.Category != CategoryInfra || f.Severity != SeverityCritical {
			t.Errorf("finding = %+v, want critical infra", f)
		}
	}
}

func TestEvaluateDisconnectPattern(t *testing.T) {
	th := DefaultThresholds()
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	since := now.Add(-5 * time.Minute)

	mkEvents := func(n int, typ string, ts time.Time) []telemetry.ClientEvent {
		var events []telemetry.ClientEvent
		for i := 0; i < n; i++ {
			events = append(events, telemetry.ClientEvent{Type: typ, Timestamp: ts})
		}
		return events
	}

	t.Run("six disconnects stay quiet", func(t *testing.T) {
		events := mkEvents(6, "client_disconnect", now.Add(-time.Minute))
		if findings := EvaluateDisconnectPattern(events, since, th); len(findings) != 0 {
			t.Errorf("fired below threshold: %+v", findings)
		}
	})

	t.Run("seven disconnects fire", func(t *testing.T) {
		events := mkEvents(7, "client_disconnect", now.Add(-time.Minute))
		findings := EvaluateDisconnectPattern(events, since, th)
		if len(findings) != 1 {
			t.Fatalf("got %d findings, want 1", len(findings))
		}
		if findings[0].Severity != SeverityMedium {
			t.Errorf("severity = %s, want %s", findings[0].Severity, SeverityMedium)
		}
	})

	t.Run("old events outside the window do not count", func(t *testing.T) {
		events := mkEvents(10, "client_disassoc", now.Add(-time.Hour))
		if findings := EvaluateDisconnectPattern(events, since, th); len(findings) != 0 {
			t.Errorf("stale events counted: %+v", findings)
		}
	})

	t.Run("mixed disconnect and disassoc both count", func(t *testing.T) {
		events := append(
			mkEvents(4, "client_disconnect", now.Add(-time.Minute)),
			mkEvents(3, "client_disassoc", now.Add(-2*time.Minute))...,
		)
		if findings := EvaluateDisconnectPattern(events, since, th); len(findings) != 1 {
			t.Errorf("got %d findings, want 1", len(findings))
		}
	})
}

func TestEvaluatePing(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name         string
		loss, avg    float64
		wantCount    int
		wantSeverity string
	}{
		{"clean probe", 0, 20, 0, ""},
		{"moderate loss", 10, 20, 1, SeverityMedium},
		{"heavy loss", 30, 20, 1, SeverityHigh},
		{"moderate latency", 0, 150, 1, SeverityMedium},
		{"heavy latency", 0, 300, 1, SeverityHigh},
		{"loss and latency both fire", 10, 150, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := EvaluatePing(tt.loss, tt.avg, th)
			if len(findings) != tt.wantCount {
				t.Fatalf("got %d findings, want %d: %+v", len(findings), tt.wantCount, findings)
			}
			if tt.wantCount == 1 && findings[0].Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", findings[0].Severity, tt.wantSeverity)
			}
		})
	}
}
