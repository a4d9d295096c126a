package rules

import "fmt"

// EvaluatePing turns the local probe result into findings. The probe is a
// collaborator; this only applies the packet loss and latency thresholds.
func EvaluatePing(lossPct, avgLatencyMs float64, th Thresholds) []Finding {
	var findings []Finding

	if lossPct > th.PacketLossPct {
		sev := SeverityMedium
		if lossPct > th.PacketLossHighPct {
			sev = SeverityHigh
		}
		findings = append(findings, Finding{
			Category:   CategoryConnectivity,
			Severity:   sev,
			Metric:     "Packet Loss",
			Value:      fmt.Sprintf("%.0f%%", lossPct),
			Message:    fmt.Sprintf("high packet loss to client: %.0f%% (should be < %.0f%%)", lossPct, th.PacketLossPct),
			Suggestion: "check RF conditions and wired path between probe host and client",
		})
	}

	if avgLatencyMs > th.LatencyMs {
		sev := SeverityMedium
		if avgLatencyMs > th.LatencyHighMs {
			sev = SeverityHigh
		}
		findings = append(findings, Finding{
			Category: CategoryConnectivity,
			Severity: sev,
			Metric:   "Average Latency",
			Value:    fmt.Sprintf("%.1f ms", avgLatencyMs),
			Message:  fmt.Sprintf("high average latency to client: %.1f ms (should be < %.0f ms)", avgLatencyMs, th.LatencyMs),
		})
	}

	return findings
}
