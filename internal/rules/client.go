package rules

import (
	"fmt"

	"github.com/adnanq/wlandiag/internal/telemetry"
)

// EvaluateClient applies every client health check to the snapshot and
// returns all findings that fired. Checks are independent: one firing
// never suppresses another, and a missing metric only skips the checks
// that need it.
func EvaluateClient(c telemetry.ClientStat, th Thresholds) []Finding {
	var findings []Finding

	if c.RSSI != nil && *c.RSSI < th.RSSIPoorDBm {
		sev := SeverityMedium
		if *c.RSSI < th.RSSIBadDBm {
			sev = SeverityHigh
		}
		findings = append(findings, Finding{
			Category:   CategorySignal,
			Severity:   sev,
			Metric:     "RSSI",
			Value:      fmt.Sprintf("%d dBm", *c.RSSI),
			Message:    fmt.Sprintf("poor signal strength: %d dBm (should be > %d dBm)", *c.RSSI, th.RSSIPoorDBm),
			Suggestion: "check AP placement, adjust transmit power or add AP coverage",
		})
	}

	if c.SNR != nil && *c.SNR < th.SNRPoorDB {
		sev := SeverityMedium
		if *c.SNR < th.SNRBadDB {
			sev = SeverityHigh
		}
		findings = append(findings, Finding{
			Category:   CategorySignal,
			Severity:   sev,
			Metric:     "SNR",
			Value:      fmt.Sprintf("%d dB", *c.SNR),
			Message:    fmt.Sprintf("poor signal quality: %d dB SNR (should be > %d dB)", *c.SNR, th.SNRPoorDB),
			Suggestion: "investigate RF interference, check for non-WiFi devices on the band",
		})
	}

	txPct, txOK := c.TxRetryPct()
	rxPct, rxOK := c.RxRetryPct()
	if (txOK && txPct > th.RetryWarnPct) || (rxOK && rxPct > th.RetryWarnPct) {
		sev := SeverityMedium
		if txPct > th.RetryHighPct || rxPct > th.RetryHighPct {
			sev = SeverityHigh
		}
		findings = append(findings, Finding{
			Category:   CategoryRetry,
			Severity:   sev,
			Metric:     "Retries",
			Value:      fmt.Sprintf("TX %.1f%%, RX %.1f%%", txPct, rxPct),
			Message:    fmt.Sprintf("high retry rates: TX %.1f%%, RX %.1f%% (should be < %.0f%%)", txPct, rxPct, th.RetryWarnPct),
			Suggestion: "check channel congestion, co-channel interference or RF obstacles",
		})
	}

	if c.LatencyMs != nil && *c.LatencyMs > th.LatencyMs {
		sev := SeverityMedium
		if *c.LatencyMs > th.LatencyHighMs {
			sev = SeverityHigh
		}
		findings = append(findings, Finding{
			Category: CategoryConnectivity,
			Severity: sev,
			Metric:   "Latency",
			Value:    fmt.Sprintf("%.1f ms", *c.LatencyMs),
			Message:  fmt.Sprintf("high client latency: %.1f ms (should be < %.0f ms)", *c.LatencyMs, th.LatencyMs),
		})
	}

	return findings
}

// EvaluateCombined is the one multi-field correlation check: weak signal
// on a client served by an AP that has been up for a long stretch suggests
// the AP radio state has degraded and a reboot may help. Both facts must
// hold; either one alone is not enough.
func EvaluateCombined(c telemetry.ClientStat, ap telemetry.APStat, th Thresholds) []Finding {
	if c.RSSI == nil || ap.Uptime == nil {
		return nil
	}
	days, _ := ap.UptimeDays()
	if *c.RSSI < th.RSSIPoorDBm && days > th.ComboSignalUptimeDays {
		return []Finding{{
			Category:   CategoryAP,
			Severity:   SeverityWarning,
			Metric:     "Signal+Uptime",
			Value:      fmt.Sprintf("RSSI %d dBm, AP up %.1f days", *c.RSSI, days),
			Message:    fmt.Sprintf("weak signal (%d dBm) while serving AP has been up %.1f days", *c.RSSI, days),
			Suggestion: "schedule an AP reboot during a maintenance window",
		}}
	}
	return nil
}
