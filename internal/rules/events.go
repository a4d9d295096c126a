package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/adnanq/wlandiag/internal/telemetry"
)

// Event type fragments that classify an event as an authentication or
// authorization failure. Matched as substrings of the lowercased type,
// the same way the controller names them.
var authFailureTypes = []string{
	"auth_failed",
	"assoc_failed",
	"eap_failure",
	"radius_failure",
	"802_1x_failure",
	"dot1x_failure",
	"psk_failure",
}

// Event type fragments for DHCP and DNS failures.
var dhcpDNSFailureTypes = []string{
	"dhcp_failure",
	"dhcp_timeout",
	"no_dhcp_response",
	"dns_failure",
	"dns_timeout",
	"client_ip_conflict",
}

// EvaluateAuthEvents scans the event history for authentication and
// authorization failures. Any hit is critical and routes to the security
// team.
func EvaluateAuthEvents(events []telemetry.ClientEvent) []Finding {
	var findings []Finding
	for _, ev := range events {
		t := strings.ToLower(ev.Type)
		for _, frag := range authFailureTypes {
			if strings.Contains(t, frag) {
				findings = append(findings, Finding{
					Category:   CategoryAuth,
					Severity:   SeverityCritical,
					Metric:     "Auth Event",
					Value:      ev.Type,
					Message:    authMessage(ev),
					Suggestion: "check RADIUS connectivity, user credentials/certificates and 802.1X supplicant configuration",
				})
				break
			}
		}
	}
	return findings
}

// EvaluateNetworkEvents scans the event history for DHCP and DNS
// failures. Any hit is critical and routes to the infrastructure team.
func EvaluateNetworkEvents(events []telemetry.ClientEvent) []Finding {
	var findings []Finding
	for _, ev := range events {
		t := strings.ToLower(ev.Type)
		txt := strings.ToLower(ev.Text)
		for _, frag := range dhcpDNSFailureTypes {
			if strings.Contains(t, frag) || strings.Contains(txt, frag) {
				findings = append(findings, Finding{
					Category:   CategoryInfra,
					Severity:   SeverityCritical,
					Metric:     "DHCP/DNS Event",
					Value:      ev.Type,
					Message:    fmt.Sprintf("network service failure event: %s %s", ev.Type, ev.Text),
					Suggestion: "check DHCP server and pool availability, DNS resolution and VLAN configuration",
				})
				break
			}
		}
	}
	return findings
}

// EvaluateDisconnectPattern counts disconnect/disassociation events after
// the given cutoff and fires when the count reaches the threshold. The
// orchestrator passes now minus the configured window (5 minutes by
// default) as the cutoff.
func EvaluateDisconnectPattern(events []telemetry.ClientEvent, since time.Time, th Thresholds) []Finding {
	count := 0
	for _, ev := range events {
		if ev.Timestamp.Before(since) {
			continue
		}
		t := strings.ToLower(ev.Type)
		if strings.Contains(t, "disconnect") || strings.Contains(t, "disassoc") {
			count++
		}
	}
	if count >= th.DisconnectCount {
		return []Finding{{
			Category:   CategoryConnectivity,
			Severity:   SeverityMedium,
			Metric:     "Disconnect Pattern",
			Value:      fmt.Sprintf("%d in %dmin", count, th.DisconnectWindowMins),
			Message:    fmt.Sprintf("frequent disconnections: %d in the last %d minutes (threshold %d)", count, th.DisconnectWindowMins, th.DisconnectCount),
			Suggestion: "check roaming behaviour, client driver and AP coverage overlap",
		}}
	}
	return nil
}

func authMessage(ev telemetry.ClientEvent) string {
	reason := ev.Reason
	if reason == "" {
		reason = "unknown reason"
	}
	if ev.Text != "" {
		return fmt.Sprintf("authentication failure event: %s (%s) %s", ev.Type, reason, ev.Text)
	}
	return fmt.Sprintf("authentication failure event: %s (%s)", ev.Type, reason)
}
