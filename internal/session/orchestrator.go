package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/adnanq/wlandiag/internal/escalate"
	"github.com/adnanq/wlandiag/internal/mist"
	"github.com/adnanq/wlandiag/internal/probe"
	"github.com/adnanq/wlandiag/internal/rules"
	"github.com/adnanq/wlandiag/internal/telemetry"
)

const eventFetchLimit = 100

// Fetcher is the slice of the cloud API the orchestrator needs.
// *mist.Client satisfies it; tests substitute a fake.
type Fetcher interface {
	ListSites(ctx context.Context) ([]mist.Site, error)
	SiteClientStats(ctx context.Context, siteID, mac string) ([]telemetry.ClientStat, error)
	SearchClient(ctx context.Context, mac string, start, end time.Time) (*telemetry.ClientStat, error)
	ClientEvents(ctx context.Context, mac string, start, end time.Time, limit int) ([]telemetry.ClientEvent, error)
	FindAP(ctx context.Context, siteID, apMAC string) (*mist.Device, error)
	DeviceStats(ctx context.Context, siteID, deviceID string) (*telemetry.APStat, error)
}

// Prober runs the local ICMP probe against the client.
type Prober interface {
	Run(host string) (probe.Metrics, error)
}

// LocalChecker runs local infrastructure checks (DNS, gateway). Only
// invoked when DHCP/DNS failure events fired.
type LocalChecker interface {
	Run() []rules.Finding
}

// Orchestrator sequences the telemetry fetches and feeds the results
// through the rule evaluator and escalation router. It holds no state
// between runs; every invocation is a fresh pass over fresh telemetry.
type Orchestrator struct {
	fetcher Fetcher
	prober  Prober
	local   LocalChecker
	th      rules.Thresholds

	now func() time.Time
}

func New(fetcher Fetcher, prober Prober, local LocalChecker, th rules.Thresholds) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		prober:  prober,
		local:   local,
		th:      th,
		now:     time.Now,
	}
}

// Run troubleshoots one target (MAC or IP) using telemetry from the given
// trailing window. The returned Result always carries a terminal status;
// the error is non-nil only when nothing could be determined at all.
func (o *Orchestrator) Run(ctx context.Context, target string, window time.Duration) (*Result, error) {
	result := &Result{
		SessionID:   uuid.New().String(),
		Target:      target,
		GeneratedAt: o.now().UTC(),
		Findings:    []rules.Finding{},
	}

	log.Info().Str("session", result.SessionID).Str("target", target).Msg("troubleshooting session started")

	client, err := o.locateClient(ctx, target, window)
	if err != nil {
		if errors.Is(err, mist.ErrNotFound) {
			result.Status = StatusNotFound
			result.Escalation = escalate.TargetNone
			result.Error = fmt.Sprintf("client %s not found in any site or in the last %s of history", target, window)
			result.Recommendations = []string{
				"verify the client MAC address or IP",
				"check that the client connects to this organization",
				"widen the search window with -hours",
			}
			return result, nil
		}
		result.Status = StatusFetchError
		result.Error = err.Error()
		return result, fmt.Errorf("locate client: %w", err)
	}
	result.Client = client
	result.StepsCompleted = append(result.StepsCompleted, "client_association_check")

	log.Info().
		Str("client", client.DisplayName()).
		Str("ap", client.APMAC).
		Str("ssid", client.SSID).
		Msg("client located")

	// AP stats and event history are independent lookups; fetch them in
	// parallel. Evaluation starts only once both are collected.
	var (
		wg     sync.WaitGroup
		ap     *telemetry.APStat
		events []telemetry.ClientEvent
	)

	if client.SiteID != "" && client.APMAC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ap = o.fetchAP(ctx, client)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		end := o.now()
		evs, err := o.fetcher.ClientEvents(ctx, telemetry.NormalizeMAC(client.MAC), end.Add(-window), end, eventFetchLimit)
		if err != nil {
			// Partial data: evaluation continues without event rules.
			log.Warn().Err(err).Msg("event history unavailable")
			return
		}
		events = evs
	}()

	wg.Wait()
	result.AP = ap
	result.StepsCompleted = append(result.StepsCompleted, "event_history_fetch")
	if ap != nil {
		result.StepsCompleted = append(result.StepsCompleted, "ap_stats_fetch")
	}

	if o.prober != nil && client.IP != "" {
		metrics, err := o.prober.Run(client.IP)
		if err != nil {
			log.Warn().Err(err).Str("ip", client.IP).Msg("ping probe failed, skipping connectivity checks")
		} else {
			result.Ping = &metrics
			result.StepsCompleted = append(result.StepsCompleted, "ping_probe")
		}
	}

	result.Findings = o.evaluate(client, ap, events, result.Ping)
	result.StepsCompleted = append(result.StepsCompleted, "rule_evaluation")

	// Local infra checks only make sense once the controller reported
	// DHCP/DNS trouble; they separate a client problem from a site one.
	if o.local != nil && rules.HasCategory(result.Findings, rules.CategoryInfra) {
		result.Findings = append(result.Findings, o.local.Run()...)
		result.StepsCompleted = append(result.StepsCompleted, "local_infra_check")
	}

	if len(result.Findings) == 0 {
		result.Status = StatusAllClear
	} else {
		result.Status = StatusIssuesFound
	}
	result.Escalation = escalate.Route(result.Findings)
	result.Recommendations = escalate.Recommendations(result.Escalation, client)
	result.StepsCompleted = append(result.StepsCompleted, "escalation_routing")

	log.Info().
		Int("findings", len(result.Findings)).
		Str("status", string(result.Status)).
		Str("escalation", string(result.Escalation)).
		Msg("session complete")

	return result, nil
}

// locateClient searches live client stats across every site, then falls
// back to the org-wide historical search (MAC targets only).
func (o *Orchestrator) locateClient(ctx context.Context, target string, window time.Duration) (*telemetry.ClientStat, error) {
	byIP := net.ParseIP(target) != nil
	mac := ""
	if !byIP {
		mac = telemetry.NormalizeMAC(target)
	}

	sites, err := o.fetcher.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	for _, site := range sites {
		stats, err := o.fetcher.SiteClientStats(ctx, site.ID, mac)
		if err != nil {
			log.Warn().Err(err).Str("site", site.Name).Msg("client stats unavailable for site")
			continue
		}
		for i := range stats {
			if matchClient(stats[i], target, mac, byIP) {
				stats[i].SiteID = site.ID
				stats[i].SiteName = site.Name
				return &stats[i], nil
			}
		}
	}

	if byIP {
		// Historical search is keyed by MAC; an IP target that is not
		// currently connected cannot be resolved.
		return nil, mist.ErrNotFound
	}

	end := o.now()
	client, err := o.fetcher.SearchClient(ctx, mac, end.Add(-window), end)
	if err != nil {
		return nil, err
	}
	log.Debug().Msg("client resolved from historical data; live metrics may be stale")
	return client, nil
}

func (o *Orchestrator) fetchAP(ctx context.Context, client *telemetry.ClientStat) *telemetry.APStat {
	device, err := o.fetcher.FindAP(ctx, client.SiteID, client.APMAC)
	if err != nil {
		log.Warn().Err(err).Str("ap_mac", client.APMAC).Msg("AP lookup failed, skipping AP checks")
		return nil
	}
	client.APName = device.Name
	client.APID = device.ID

	stats, err := o.fetcher.DeviceStats(ctx, client.SiteID, device.ID)
	if err != nil {
		log.Warn().Err(err).Str("ap", device.Name).Msg("AP stats unavailable, using inventory status only")
		return &telemetry.APStat{MAC: device.MAC, ID: device.ID, Name: device.Name, Model: device.Model, Status: device.Status}
	}
	if stats.Name == "" {
		stats.Name = device.Name
	}
	return stats
}

// evaluate runs every rule group over the collected telemetry. All groups
// run unconditionally and their findings accumulate; no early exit.
func (o *Orchestrator) evaluate(client *telemetry.ClientStat, ap *telemetry.APStat, events []telemetry.ClientEvent, pingMetrics *probe.Metrics) []rules.Finding {
	findings := []rules.Finding{}

	findings = append(findings, rules.EvaluateAuthEvents(events)...)
	findings = append(findings, rules.EvaluateNetworkEvents(events)...)
	findings = append(findings, rules.EvaluateClient(*client, o.th)...)

	if ap != nil {
		findings = append(findings, rules.EvaluateAP(*ap, o.th)...)
		findings = append(findings, rules.EvaluateCombined(*client, *ap, o.th)...)
	}

	cutoff := o.now().Add(-time.Duration(o.th.DisconnectWindowMins) * time.Minute)
	findings = append(findings, rules.EvaluateDisconnectPattern(events, cutoff, o.th)...)

	if pingMetrics != nil {
		findings = append(findings, rules.EvaluatePing(pingMetrics.PacketLossPct, pingMetrics.AvgLatencyMs, o.th)...)
	}

	return findings
}

func matchClient(stat telemetry.ClientStat, target, mac string, byIP bool) bool {
	if byIP {
		return stat.IP == target
	}
	return telemetry.NormalizeMAC(stat.MAC) == mac
}
