package rules

import (
	"fmt"
	"strings"

	"github.com/adnanq/wlandiag/internal/telemetry"
)

// EvaluateAP applies the access point health checks. Uptime boundaries
// are exclusive: an AP at exactly the critical limit does not fire.
func EvaluateAP(ap telemetry.APStat, th Thresholds) []Finding {
	var findings []Finding

	if ap.Status != "" && !apOnline(ap.Status) {
		findings = append(findings, Finding{
			Category:   CategoryAP,
			Severity:   SeverityCritical,
			Metric:     "AP Status",
			Value:      ap.Status,
			Message:    fmt.Sprintf("AP %s is %s", apLabel(ap), ap.Status),
			Suggestion: "check AP power and uplink; client cannot be served by an offline AP",
		})
	}

	if days, ok := ap.UptimeDays(); ok {
		switch {
		case days > th.APUptimeCriticalDays:
			findings = append(findings, Finding{
				Category:   CategoryAP,
				Severity:   SeverityCritical,
				Metric:     "AP Uptime",
				Value:      fmt.Sprintf("%.1f days", days),
				Message:    fmt.Sprintf("AP uptime %.1f days exceeds %.0f days", days, th.APUptimeCriticalDays),
				Suggestion: "reboot the AP; long-running radios accumulate state and degrade",
			})
		case days > th.APUptimeWarningDays:
			findings = append(findings, Finding{
				Category:   CategoryAP,
				Severity:   SeverityWarning,
				Metric:     "AP Uptime",
				Value:      fmt.Sprintf("%.1f days", days),
				Message:    fmt.Sprintf("AP uptime %.1f days exceeds %.0f days", days, th.APUptimeWarningDays),
				Suggestion: "consider a scheduled reboot",
			})
		case days*24 < th.APRestartWindowHours:
			findings = append(findings, Finding{
				Category:   CategoryAP,
				Severity:   SeverityWarning,
				Metric:     "AP Uptime",
				Value:      fmt.Sprintf("%.2f hours", days*24),
				Message:    "AP restarted recently; may indicate stability issues",
				Suggestion: "check AP event log for crash or power events",
			})
		}
	}

	if ap.CPUUtil != nil && *ap.CPUUtil > th.APResourcePct {
		findings = append(findings, Finding{
			Category: CategoryAP,
			Severity: SeverityMedium,
			Metric:   "AP CPU",
			Value:    fmt.Sprintf("%d%%", *ap.CPUUtil),
			Message:  fmt.Sprintf("AP CPU utilization %d%% exceeds %d%%", *ap.CPUUtil, th.APResourcePct),
		})
	}
	if ap.MemUtil != nil && *ap.MemUtil > th.APResourcePct {
		findings = append(findings, Finding{
			Category: CategoryAP,
			Severity: SeverityMedium,
			Metric:   "AP Memory",
			Value:    fmt.Sprintf("%d%%", *ap.MemUtil),
			Message:  fmt.Sprintf("AP memory utilization %d%% exceeds %d%%", *ap.MemUtil, th.APResourcePct),
		})
	}

	for band, util := range ap.RadioUtil {
		if util > th.ChannelUtilPct {
			findings = append(findings, Finding{
				Category:   CategoryRadio,
				Severity:   SeverityMedium,
				Metric:     "Channel Utilization",
				Value:      fmt.Sprintf("%s: %d%%", band, util),
				Message:    fmt.Sprintf("channel utilization %d%% on %s exceeds %d%%", util, band, th.ChannelUtilPct),
				Suggestion: "review channel plan; the band is congested",
			})
		}
	}

	return findings
}

func apOnline(status string) bool {
	switch strings.ToLower(status) {
	case "connected", "online":
		return true
	}
	return false
}

func apLabel(ap telemetry.APStat) string {
	if ap.Name != "" {
		return ap.Name
	}
	return ap.MAC
}
