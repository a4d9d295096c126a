package session

import (
	"time"

	"github.com/adnanq/wlandiag/internal/escalate"
	"github.com/adnanq/wlandiag/internal/probe"
	"github.com/adnanq/wlandiag/internal/rules"
	"github.com/adnanq/wlandiag/internal/telemetry"
)

// Status is the terminal state of one troubleshooting invocation.
// all_clear and issues_found are both successful outcomes; not_found and
// fetch_error mean the session could not determine anything and must not
// be read as "no issues".
type Status string

const (
	StatusAllClear    Status = "all_clear"
	StatusIssuesFound Status = "issues_found"
	StatusNotFound    Status = "not_found"
	StatusFetchError  Status = "fetch_error"
)

// Result is the assembled output of one session: the telemetry that was
// gathered, every finding that fired, and where it all routes.
type Result struct {
	SessionID   string    `json:"session_id"`
	Target      string    `json:"target"`
	GeneratedAt time.Time `json:"generated_at"`

	Client *telemetry.ClientStat `json:"client,omitempty"`
	AP     *telemetry.APStat     `json:"ap,omitempty"`
	Ping   *probe.Metrics        `json:"ping,omitempty"`

	Findings        []rules.Finding `json:"findings"`
	Status          Status          `json:"status"`
	Escalation      escalate.Target `json:"escalation"`
	Recommendations []string        `json:"recommendations,omitempty"`
	StepsCompleted  []string        `json:"steps_completed"`
	Error           string          `json:"error,omitempty"`
}
