package escalate

import (
	"fmt"

	"github.com/adnanq/wlandiag/internal/rules"
	"github.com/adnanq/wlandiag/internal/telemetry"
)

// Target is where a troubleshooting session is routed after evaluation.
type Target string

const (
	// TargetNone means no findings fired; nothing to route.
	TargetNone Target = "none"
	// TargetSecurity routes authentication failures to the security /
	// identity management team.
	TargetSecurity Target = "security_identity"
	// TargetInfrastructure routes DHCP/DNS failures to the network
	// infrastructure team.
	TargetInfrastructure Target = "infrastructure"
	// TargetManual means RF/health findings exist but have no automated
	// remediation owner; a human engineer gets guidance instead.
	TargetManual Target = "manual_troubleshooting"
)

// Route picks the escalation target for a finding set. The order is
// category-based, not severity-based: auth and infra problems have known
// remediation owners and win over any health finding; health findings
// degrade to advisory guidance rather than automated routing.
func Route(findings []rules.Finding) Target {
	if len(findings) == 0 {
		return TargetNone
	}
	if rules.HasCategory(findings, rules.CategoryAuth) {
		return TargetSecurity
	}
	if rules.HasCategory(findings, rules.CategoryInfra) {
		return TargetInfrastructure
	}
	return TargetManual
}

// Recommendations builds the action list for the chosen target. For
// manual troubleshooting the list includes the client's raw metrics so
// the engineer has context without another dashboard lookup.
func Recommendations(target Target, client *telemetry.ClientStat) []string {
	switch target {
	case TargetSecurity:
		return []string{
			"check RADIUS server connectivity",
			"verify user credentials and certificates",
			"review identity provider authorization policies",
			"check 802.1X supplicant configuration on the client",
		}
	case TargetInfrastructure:
		return []string{
			"check DHCP server configuration and availability",
			"verify the DHCP pool has free addresses",
			"test DNS server connectivity and resolution",
			"check LAN/WAN connectivity and VLAN configuration",
		}
	case TargetManual:
		recs := []string{
			"assess AP and radio performance (client load, channel utilization, noise)",
			"evaluate AP hardware health if metrics point at the AP",
			"analyze the RF environment for interference and coverage gaps",
		}
		if client != nil {
			recs = append(recs, metricContext(client)...)
		}
		return recs
	default:
		return []string{"all automated checks passed; proceed with manual steps only if the user still reports issues"}
	}
}

func metricContext(c *telemetry.ClientStat) []string {
	var ctx []string
	if c.RSSI != nil {
		ctx = append(ctx, fmt.Sprintf("RSSI: %d dBm (good > -67, fair -67 to -70, poor < -70)", *c.RSSI))
	}
	if c.SNR != nil {
		ctx = append(ctx, fmt.Sprintf("SNR: %d dB (good > 20, fair 15-20, poor < 15)", *c.SNR))
	}
	if pct, ok := c.TxRetryPct(); ok {
		ctx = append(ctx, fmt.Sprintf("TX retry rate: %.1f%% (good < 5%%, concern 10%%+, critical 20%%+)", pct))
	}
	if pct, ok := c.RxRetryPct(); ok {
		ctx = append(ctx, fmt.Sprintf("RX retry rate: %.1f%% (good < 5%%, concern 10%%+, critical 20%%+)", pct))
	}
	return ctx
}
