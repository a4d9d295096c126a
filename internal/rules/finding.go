package rules

// Severity tiers for findings. CRITICAL and WARNING come from the AP
// health checks; HIGH/MEDIUM/LOW from client metric checks.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityWarning  = "WARNING"
	SeverityLow      = "LOW"
)

// Finding categories. Escalation routing is category-based: auth findings
// route to the security team, infra findings to the infrastructure team,
// everything else falls back to manual troubleshooting guidance.
const (
	CategorySignal       = "signal"
	CategoryRetry        = "retry"
	CategoryRadio        = "radio"
	CategoryAP           = "ap"
	CategoryAuth         = "auth"
	CategoryInfra        = "infra"
	CategoryConnectivity = "connectivity"
)

// Finding is a single triggered diagnostic rule result. Findings are
// created during evaluation and never mutated afterwards.
type Finding struct {
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Metric     string `json:"metric"`
	Value      string `json:"value,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HasCategory reports whether any finding in the set belongs to the
// given category.
func HasCategory(findings []Finding, category string) bool {
	for _, f := range findings {
		if f.Category == category {
			return true
		}
	}
	return false
}

// CountBySeverity returns how many findings carry the given severity.
func CountBySeverity(findings []Finding, severity string) int {
	n := 0
	for _, f := range findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}
