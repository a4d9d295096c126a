package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/adnanq/wlandiag/internal/escalate"
	"github.com/adnanq/wlandiag/internal/rules"
	"github.com/adnanq/wlandiag/internal/session"
)

// WriteJSON renders the session result as indented JSON.
func WriteJSON(w io.Writer, result *session.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// WriteText renders the human report. verbose adds per-finding
// suggestions and the completed step list.
func WriteText(w io.Writer, result *session.Result, verbose bool) {
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "WIRELESS TROUBLESHOOTING REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Target:     %s\n", result.Target)
	fmt.Fprintf(w, "Session:    %s\n", result.SessionID)
	fmt.Fprintf(w, "Generated:  %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if c := result.Client; c != nil {
		fmt.Fprintf(w, "Client:     %s (%s)\n", c.DisplayName(), c.MAC)
		if c.IP != "" {
			fmt.Fprintf(w, "IP:         %s\n", c.IP)
		}
		if c.APMAC != "" {
			fmt.Fprintf(w, "AP:         %s (%s)  SSID: %s\n", apName(result), c.APMAC, c.SSID)
		}
		fmt.Fprintf(w, "Signal:     RSSI=%s  SNR=%s\n", intOrNA(c.RSSI, "dBm"), intOrNA(c.SNR, "dB"))
	}

	fmt.Fprintln(w, rule)

	switch result.Status {
	case session.StatusNotFound, session.StatusFetchError:
		fmt.Fprintf(w, "STATUS: %s\n", strings.ToUpper(string(result.Status)))
		fmt.Fprintf(w, "  %s\n", result.Error)
	case session.StatusAllClear:
		fmt.Fprintln(w, "STATUS: ALL CLEAR")
		fmt.Fprintln(w, "  all automated checks passed")
	default:
		fmt.Fprintf(w, "STATUS: ISSUES FOUND (%d)\n", len(result.Findings))
		fmt.Fprintf(w, "  critical: %d  high: %d  medium: %d  warning: %d\n",
			rules.CountBySeverity(result.Findings, rules.SeverityCritical),
			rules.CountBySeverity(result.Findings, rules.SeverityHigh),
			rules.CountBySeverity(result.Findings, rules.SeverityMedium),
			rules.CountBySeverity(result.Findings, rules.SeverityWarning))
		fmt.Fprintln(w)
		for i, f := range result.Findings {
			fmt.Fprintf(w, "%2d. [%s] %s: %s\n", i+1, f.Severity, f.Metric, f.Message)
			if verbose && f.Suggestion != "" {
				fmt.Fprintf(w, "      -> %s\n", f.Suggestion)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Escalation: %s\n", escalationLabel(result.Escalation))
	if len(result.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}

	if verbose && len(result.StepsCompleted) > 0 {
		fmt.Fprintf(w, "Steps completed: %s\n", strings.Join(result.StepsCompleted, ", "))
	}
	fmt.Fprintln(w, rule)
}

func escalationLabel(t escalate.Target) string {
	switch t {
	case escalate.TargetSecurity:
		return "Security / Identity Management team"
	case escalate.TargetInfrastructure:
		return "Network Infrastructure team"
	case escalate.TargetManual:
		return "manual troubleshooting (engineer guidance below)"
	default:
		return "none"
	}
}

func apName(result *session.Result) string {
	if result.AP != nil && result.AP.Name != "" {
		return result.AP.Name
	}
	if result.Client != nil && result.Client.APName != "" {
		return result.Client.APName
	}
	return "unknown"
}

func intOrNA(v *int, unit string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d %s", *v, unit)
}
