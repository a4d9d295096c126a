package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adnanq/wlandiag/internal/escalate"
	"github.com/adnanq/wlandiag/internal/mist"
	"github.com/adnanq/wlandiag/internal/probe"
	"github.com/adnanq/wlandiag/internal/rules"
	"github.com/adnanq/wlandiag/internal/telemetry"
)

type fakeFetcher struct {
	sites     []mist.Site
	stats     map[string][]telemetry.ClientStat
	search    *telemetry.ClientStat
	searchErr error
	events    []telemetry.ClientEvent
	eventsErr error
	device    *mist.Device
	deviceErr error
	apStat    *telemetry.APStat
	apStatErr error
	sitesErr  error
}

func (f *fakeFetcher) ListSites(ctx context.Context) ([]mist.Site, error) {
	return f.sites, f.sitesErr
}

func (f *fakeFetcher) SiteClientStats(ctx context.Context, siteID, mac string) ([]telemetry.ClientStat, error) {
	return f.stats[siteID], nil
}

func (f *fakeFetcher) SearchClient(ctx context.Context, mac string, start, end time.Time) (*telemetry.ClientStat, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.search == nil {
		return nil, mist.ErrNotFound
	}
	return f.search, nil
}

func (f *fakeFetcher) ClientEvents(ctx context.Context, mac string, start, end time.Time, limit int) ([]telemetry.ClientEvent, error) {
	return f.events, f.eventsErr
}

func (f *fakeFetcher) FindAP(ctx context.Context, siteID, apMAC string) (*mist.Device, error) {
	if f.deviceErr != nil {
		return nil, f.deviceErr
	}
	return f.device, nil
}

func (f *fakeFetcher) DeviceStats(ctx context.Context, siteID, deviceID string) (*telemetry.APStat, error) {
	if f.apStatErr != nil {
		return nil, f.apStatErr
	}
	return f.apStat, nil
}

type fakeProber struct {
	metrics probe.Metrics
	err     error
	calls   int
}

func (p *fakeProber) Run(host string) (probe.Metrics, error) {
	p.calls++
	return p.metrics, p.err
}

func intPtr(v int) *int { return &v }

func healthyClient() telemetry.ClientStat {
	rssi, snr := -60, 30
	return telemetry.ClientStat{
		MAC:      "aa:bb:cc:dd:ee:ff",
		Hostname: "laptop-1",
		IP:       "10.0.0.20",
		APMAC:    "5c:5b:35:00:00:01",
		SSID:     "corp",
		RSSI:     &rssi,
		SNR:      &snr,
		TxPkts:   1000,
		RxPkts:   1000,
	}
}

func newTestOrchestrator(f *fakeFetcher, p Prober) *Orchestrator {
	o := New(f, p, nil, rules.DefaultThresholds())
	o.now = func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestRunAllClear(t *testing.T) {
	client := healthyClient()
	uptime := int64(30 * 86400)
	fetcher := &fakeFetcher{
		sites:  []mist.Site{{ID: "site-1", Name: "HQ"}},
		stats:  map[string][]telemetry.ClientStat{"site-1": {client}},
		device: &mist.Device{ID: "dev-1", MAC: client.APMAC, Name: "ap-lobby", Type: "ap"},
		apStat: &telemetry.APStat{MAC: client.APMAC, Status: "connected", Uptime: &uptime},
	}
	prober := &fakeProber{metrics: probe.Metrics{PacketLossPct: 0, AvgLatencyMs: 10, PacketsRecv: 10}}

	result, err := newTestOrchestrator(fetcher, prober).Run(context.Background(), "AA:BB:CC:DD:EE:FF", 24*time.Hour)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != StatusAllClear {
		t.Errorf("status = %s, want %s (findings: %+v)", result.Status, StatusAllClear, result.Findings)
	}
	if result.Escalation != escalate.TargetNone {
		t.Errorf("escalation = %s, want %s", result.Escalation, escalate.TargetNone)
	}
	if prober.calls != 1 {
		t.Errorf("prober called %d times, want 1", prober.calls)
	}
	if result.Client == nil || result.Client.SiteName != "HQ" {
		t.Errorf("client site not populated: %+v", result.Client)
	}
	if result.SessionID == "" {
		t.Error("session ID missing")
	}
}

func TestRunNotFound(t *testing.T) {
	fetcher := &fakeFetcher{sites: []mist.Site{{ID: "site-1", Name: "HQ"}}}

	result, err := newTestOrchestrator(fetcher, nil).Run(context.Background(), "aa:bb:cc:dd:ee:ff", 24*time.Hour)
	if err != nil {
		t.Fatalf("not-found must be a terminal status, not an error: %v", err)
	}
	if result.Status != StatusNotFound {
		t.Errorf("status = %s, want %s", result.Status, StatusNotFound)
	}
	if len(result.Findings) != 0 {
		t.Errorf("not-found must not produce findings: %+v", result.Findings)
	}
}

func TestRunFetchErrorIsNotAllClear(t *testing.T) {
	fetcher := &fakeFetcher{sitesErr: errors.New("controller timeout")}

	result, err := newTestOrchestrator(fetcher, nil).Run(context.Background(), "aa:bb:cc:dd:ee:ff", 24*time.Hour)
	if err == nil {
		t.Fatal("expected an error when the controller is unreachable")
	}
	if result.Status != StatusFetchError {
		t.Errorf("status = %s, want %s", result.Status, StatusFetchError)
	}
}

func TestRunAuthEventsAlwaysRouteSecurity(t *testing.T) {
	// Health findings present at the same time must not steal the route.
	client := healthyClient()
	client.RSSI = intPtr(-85)
	fetcher := &fakeFetcher{
		sites:  []mist.Site{{ID: "site-1", Name: "HQ"}},
		stats:  map[string][]telemetry.ClientStat{"site-1": {client}},
		device: &mist.Device{ID: "dev-1", MAC: client.APMAC, Name: "ap-lobby", Type: "ap"},
		apStat: &telemetry.APStat{MAC: client.APMAC, Status: "connected"},
		events: []telemetry.ClientEvent{
			{Type: "radius_failure", Timestamp: time.Date(2026, 8, 23, 11, 0, 0, 0, time.UTC)},
		},
	}

	result, err := newTestOrchestrator(fetcher, nil).Run(context.Background(), "aa:bb:cc:dd:ee:ff", 24*time.Hour)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != StatusIssuesFound {
		t.Errorf("status = %s, want %s", result.Status, StatusIssuesFound)
	}
	if result.Escalation != escalate.TargetSecurity {
		t.Errorf("escalation = %s, want %s", result.Escalation, escalate.TargetSecurity)
	}
	if !rules.HasCategory(result.Findings, rules.CategorySignal) {
		t.Error("health finding should still be present alongside the auth finding")
	}
}

func TestRunSkipsPingWithoutIP(t *testing.T) {
	client := healthyClient()
	client.IP = ""
	fetcher := &fakeFetcher{
		sites:  []mist.Site{{ID: "site-1", Name: "HQ"}},
		stats:  map[string][]telemetry.ClientStat{"site-1": {client}},
		device: &mist.Device{ID: "dev-1", MAC: client.APMAC, Type: "ap"},
		apStat: &telemetry.APStat{MAC: client.APMAC, Status: "connected"},
	}
	prober := &fakeProber{}

	result, err := newTestOrchestrator(fetcher, prober).Run(context.Background(), "aa:bb:cc:dd:ee:ff", 24*time.Hour)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if prober.calls != 0 {
		t.Errorf("prober called %d times, want 0 when IP unknown", prober.calls)
	}
	if result.Ping != nil {
		t.Error("result must not carry ping metrics when the probe was skipped")
	}
}

func TestRunPartialDataDegrades(t *testing.T) {
	// AP lookup fails and events are unavailable: evaluation still runs
	// over what is left instead of aborting.
	client := healthyClient()
	client.RSSI = intPtr(-75)
	fetcher := &fakeFetcher{
		sites:     []mist.Site{{ID: "site-1", Name: "HQ"}},
		stats:     map[string][]telemetry.ClientStat{"site-1": {client}},
		deviceErr: errors.New("device lookup failed"),
		eventsErr: errors.New("events unavailable"),
	}

	result, err := newTestOrchestrator(fetcher, nil).Run(context.Background(), "aa:bb:cc:dd:ee:ff", 24*time.Hour)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != StatusIssuesFound {
		t.Errorf("status = %s, want %s", result.Status, StatusIssuesFound)
	}
	if result.AP != nil {
		t.Error("AP stats should be absent when the lookup failed")
	}
	if result.Escalation != escalate.TargetManual {
		t.Errorf("escalation = %s, want %s", result.Escalation, escalate.TargetManual)
	}
}

func TestRunHistoricalFallback(t *testing.T) {
	// Not connected anywhere live, but present in the historical search.
	historic := healthyClient()
	historic.IP = ""
	fetcher := &fakeFetcher{
		sites:  []mist.Site{{ID: "site-1", Name: "HQ"}},
		search: &historic,
	}

	result, err := newTestOrchestrator(fetcher, nil).Run(context.Background(), "aa:bb:cc:dd:ee:ff", 24*time.Hour)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Client == nil || result.Client.MAC != historic.MAC {
		t.Errorf("historical client not used: %+v", result.Client)
	}
}

func TestRunIPTargetMatchesLiveClient(t *testing.T) {
	client := healthyClient()
	fetcher := &fakeFetcher{
		sites:  []mist.Site{{ID: "site-1", Name: "HQ"}},
		stats:  map[string][]telemetry.ClientStat{"site-1": {client}},
		device: &mist.Device{ID: "dev-1", MAC: client.APMAC, Type: "ap"},
		apStat: &telemetry.APStat{MAC: client.APMAC, Status: "connected"},
	}

	result, err := newTestOrchestrator(fetcher, nil).Run(context.Background(), "10.0.0.20", 24*time.Hour)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Client == nil || result.Client.MAC != client.MAC {
		t.Errorf("IP target did not resolve the client: %+v", result.Client)
	}
}
