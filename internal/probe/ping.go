package probe

import (
	"fmt"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog/log"
)

// Metrics is the result of one probe run against a host.
type Metrics struct {
	PacketLossPct float64 `json:"packet_loss_pct"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	JitterMs      float64 `json:"jitter_ms"`
	PacketsSent   int     `json:"packets_sent"`
	PacketsRecv   int     `json:"packets_recv"`
}

// Pinger runs a bounded ICMP probe against the client under diagnosis.
type Pinger struct {
	count      int
	timeout    time.Duration
	privileged bool
}

func NewPinger(count int, timeout time.Duration, privileged bool) *Pinger {
	return &Pinger{count: count, timeout: timeout, privileged: privileged}
}

// Run probes the host once and returns loss, average latency and jitter.
// Blocks up to the configured timeout.
func (p *Pinger) Run(host string) (Metrics, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return Metrics{}, fmt.Errorf("create pinger for %s: %w", host, err)
	}

	pinger.Count = p.count
	pinger.Timeout = p.timeout
	pinger.Interval = 200 * time.Millisecond
	pinger.SetPrivileged(p.privileged)

	var previousRTT time.Duration
	var jitterTotal float64
	var jitterCount int

	pinger.OnRecv = func(pkt *ping.Packet) {
		if previousRTT != 0 {
			diff := pkt.Rtt - previousRTT
			if diff < 0 {
				diff = -diff
			}
			jitterTotal += float64(diff.Milliseconds())
			jitterCount++
		}
		previousRTT = pkt.Rtt
	}

	if err := pinger.Run(); err != nil {
		return Metrics{}, fmt.Errorf("ping %s: %w", host, err)
	}

	stats := pinger.Statistics()

	jitter := 0.0
	if jitterCount > 0 {
		jitter = jitterTotal / float64(jitterCount)
	}

	m := Metrics{
		PacketLossPct: stats.PacketLoss,
		AvgLatencyMs:  float64(stats.AvgRtt.Microseconds()) / 1000,
		JitterMs:      jitter,
		PacketsSent:   stats.PacketsSent,
		PacketsRecv:   stats.PacketsRecv,
	}

	log.Debug().
		Str("host", host).
		Float64("loss_pct", m.PacketLossPct).
		Float64("avg_ms", m.AvgLatencyMs).
		Msg("ping probe complete")

	return m, nil
}
