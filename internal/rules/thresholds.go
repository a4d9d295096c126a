package rules

// Thresholds holds every tunable the rule evaluator compares against.
// Values are configuration, not literals: the uptime limits in particular
// were recalibrated in the past (30 days originally, now 90/180) and the
// retry warning level is disputed between 10% and 20%, so all of them load
// from the config file with the defaults below.
type Thresholds struct {
	RSSIPoorDBm int `mapstructure:"rssi_poor_dbm"`
	RSSIBadDBm  int `mapstructure:"rssi_bad_dbm"`

	SNRPoorDB int `mapstructure:"snr_poor_db"`
	SNRBadDB  int `mapstructure:"snr_bad_db"`

	RetryWarnPct float64 `mapstructure:"retry_warn_pct"`
	RetryHighPct float64 `mapstructure:"retry_high_pct"`

	ChannelUtilPct int `mapstructure:"channel_util_pct"`
	APResourcePct  int `mapstructure:"ap_resource_pct"`

	APUptimeCriticalDays float64 `mapstructure:"ap_uptime_critical_days"`
	APUptimeWarningDays  float64 `mapstructure:"ap_uptime_warning_days"`
	APRestartWindowHours float64 `mapstructure:"ap_restart_window_hours"`

	ComboSignalUptimeDays float64 `mapstructure:"combo_signal_uptime_days"`

	DisconnectCount      int `mapstructure:"disconnect_count"`
	DisconnectWindowMins int `mapstructure:"disconnect_window_minutes"`

	PacketLossPct     float64 `mapstructure:"packet_loss_pct"`
	PacketLossHighPct float64 `mapstructure:"packet_loss_high_pct"`
	LatencyMs         float64 `mapstructure:"latency_ms"`
	LatencyHighMs     float64 `mapstructure:"latency_high_ms"`
}

// DefaultThresholds returns the canonical threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSSIPoorDBm: -70,
		RSSIBadDBm:  -80,

		SNRPoorDB: 15,
		SNRBadDB:  10,

		RetryWarnPct: 10,
		RetryHighPct: 20,

		ChannelUtilPct: 80,
		APResourcePct:  90,

		APUptimeCriticalDays: 180,
		APUptimeWarningDays:  90,
		APRestartWindowHours: 1,

		ComboSignalUptimeDays: 14,

		DisconnectCount:      7,
		DisconnectWindowMins: 5,

		PacketLossPct:     5,
		PacketLossHighPct: 15,
		LatencyMs:         100,
		LatencyHighMs:     200,
	}
}
