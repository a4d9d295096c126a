package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/adnanq/wlandiag/internal/rules"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Dir    string `mapstructure:"dir"`    // per-session log files; empty disables
}

type APIConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	TokenEnv           string `mapstructure:"token_env"` // e.g. MIST_API_TOKEN
	OrgID              string `mapstructure:"org_id"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

type ProbeConfig struct {
	Count          int  `mapstructure:"count"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
	Privileged     bool `mapstructure:"privileged"`
}

type PublishConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Thresholds rules.Thresholds `mapstructure:"thresholds"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// LoadConfig reads the yaml config at path. The file is optional: when it
// does not exist the defaults below apply, with env overrides still
// honored. Threshold values live here so recalibration never touches code.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// env overrides: WLANDIAG_API_ORG_ID etc.
	v.SetEnvPrefix("wlandiag")
	v.AutomaticEnv()

	setDefaults(v)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// quick sanity checks
	if cfg.API.TimeoutSeconds < 1 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.Probe.Count < 1 {
		cfg.Probe.Count = 10
	}
	if cfg.Thresholds.APUptimeWarningDays >= cfg.Thresholds.APUptimeCriticalDays {
		return nil, fmt.Errorf("thresholds: ap_uptime_warning_days (%.0f) must be below ap_uptime_critical_days (%.0f)",
			cfg.Thresholds.APUptimeWarningDays, cfg.Thresholds.APUptimeCriticalDays)
	}
	if cfg.Thresholds.RetryWarnPct > cfg.Thresholds.RetryHighPct {
		return nil, fmt.Errorf("thresholds: retry_warn_pct (%.0f) must not exceed retry_high_pct (%.0f)",
			cfg.Thresholds.RetryWarnPct, cfg.Thresholds.RetryHighPct)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.mist.com/api/v1")
	v.SetDefault("api.token_env", "MIST_API_TOKEN")
	v.SetDefault("api.timeout_seconds", 10)
	v.SetDefault("api.insecure_skip_verify", false)

	th := rules.DefaultThresholds()
	v.SetDefault("thresholds.rssi_poor_dbm", th.RSSIPoorDBm)
	v.SetDefault("thresholds.rssi_bad_dbm", th.RSSIBadDBm)
	v.SetDefault("thresholds.snr_poor_db", th.SNRPoorDB)
	v.SetDefault("thresholds.snr_bad_db", th.SNRBadDB)
	v.SetDefault("thresholds.retry_warn_pct", th.RetryWarnPct)
	v.SetDefault("thresholds.retry_high_pct", th.RetryHighPct)
	v.SetDefault("thresholds.channel_util_pct", th.ChannelUtilPct)
	v.SetDefault("thresholds.ap_resource_pct", th.APResourcePct)
	v.SetDefault("thresholds.ap_uptime_critical_days", th.APUptimeCriticalDays)
	v.SetDefault("thresholds.ap_uptime_warning_days", th.APUptimeWarningDays)
	v.SetDefault("thresholds.ap_restart_window_hours", th.APRestartWindowHours)
	v.SetDefault("thresholds.combo_signal_uptime_days", th.ComboSignalUptimeDays)
	v.SetDefault("thresholds.disconnect_count", th.DisconnectCount)
	v.SetDefault("thresholds.disconnect_window_minutes", th.DisconnectWindowMins)
	v.SetDefault("thresholds.packet_loss_pct", th.PacketLossPct)
	v.SetDefault("thresholds.packet_loss_high_pct", th.PacketLossHighPct)
	v.SetDefault("thresholds.latency_ms", th.LatencyMs)
	v.SetDefault("thresholds.latency_high_ms", th.LatencyHighMs)

	v.SetDefault("probe.count", 10)
	v.SetDefault("probe.timeout_seconds", 5)
	v.SetDefault("probe.privileged", false)

	v.SetDefault("publish.topic", "wlandiag.sessions")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.dir", "logs")
}
