package telemetry

import (
	"strings"
	"time"
)

// ClientStat is an immutable snapshot of a wireless client at evaluation
// time, as reported by the controller. Optional metrics are pointers; nil
// means the controller did not report the field and dependent checks are
// skipped.
type ClientStat struct {
	MAC      string `json:"mac"`
	Hostname string `json:"hostname,omitempty"`
	Username string `json:"username,omitempty"`
	IP       string `json:"ip,omitempty"`

	APMAC  string `json:"ap_mac,omitempty"`
	APID   string `json:"ap_id,omitempty"`
	APName string `json:"ap_name,omitempty"`
	SSID   string `json:"ssid,omitempty"`

	SiteID   string `json:"site_id,omitempty"`
	SiteName string `json:"site_name,omitempty"`

	RSSI *int `json:"rssi,omitempty"`
	SNR  *int `json:"snr,omitempty"`

	TxPkts    int64 `json:"tx_pkts,omitempty"`
	TxRetries int64 `json:"tx_retries,omitempty"`
	RxPkts    int64 `json:"rx_pkts,omitempty"`
	RxRetries int64 `json:"rx_retries,omitempty"`

	LatencyMs *float64 `json:"latency_ms,omitempty"`
	Uptime    *int64   `json:"uptime,omitempty"`

	Band    string `json:"band,omitempty"`
	Channel int    `json:"channel,omitempty"`
	Proto   string `json:"proto,omitempty"`
	Status  string `json:"status,omitempty"`
}

// TxRetryPct returns the TX retry rate as a percentage of transmitted
// frames, or false when no frame counters were reported.
func (c ClientStat) TxRetryPct() (float64, bool) {
	if c.TxPkts <= 0 {
		return 0, false
	}
	return float64(c.TxRetries) / float64(c.TxPkts) * 100, true
}

// RxRetryPct returns the RX retry rate as a percentage of received frames.
func (c ClientStat) RxRetryPct() (float64, bool) {
	if c.RxPkts <= 0 {
		return 0, false
	}
	return float64(c.RxRetries) / float64(c.RxPkts) * 100, true
}

// DisplayName returns the best human identifier we have for the client.
func (c ClientStat) DisplayName() string {
	if c.Hostname != "" {
		return c.Hostname
	}
	if c.Username != "" {
		return c.Username
	}
	return c.MAC
}

// APStat is a snapshot of the access point serving the client.
type APStat struct {
	MAC    string `json:"mac"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Model  string `json:"model,omitempty"`
	Status string `json:"status,omitempty"`

	Uptime  *int64 `json:"uptime,omitempty"`
	CPUUtil *int   `json:"cpu_util,omitempty"`
	MemUtil *int   `json:"mem_util,omitempty"`

	// Channel utilization percentage per radio band, e.g. "band_24", "band_5".
	RadioUtil map[string]int `json:"radio_util,omitempty"`
}

// UptimeDays converts the reported uptime to days, or false when the AP
// did not report one.
func (a APStat) UptimeDays() (float64, bool) {
	if a.Uptime == nil {
		return 0, false
	}
	return float64(*a.Uptime) / 86400, true
}

// ClientEvent is one entry from the controller's client event history.
type ClientEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Text      string    `json:"text,omitempty"`
	APMAC     string    `json:"ap,omitempty"`
	SSID      string    `json:"ssid,omitempty"`
}

// NormalizeMAC lowercases a MAC address and strips separators so that
// aa:bb:cc:dd:ee:ff, AA-BB-CC-DD-EE-FF and aabbccddeeff all compare equal.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(mac)
	mac = strings.ReplaceAll(mac, ":", "")
	return strings.ReplaceAll(mac, "-", "")
}

// SameMAC reports whether two MAC addresses are equal after normalization.
func SameMAC(a, b string) bool {
	return NormalizeMAC(a) == NormalizeMAC(b)
}
