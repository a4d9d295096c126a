package mist

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adnanq/wlandiag/internal/config"
	"github.com/adnanq/wlandiag/internal/telemetry"
)

// Sentinel errors so callers can tell "target does not exist" apart from
// "could not ask". The distinction matters: a failed fetch must never be
// reported as all clear.
var (
	ErrNoToken  = errors.New("mist: API token not set")
	ErrNotFound = errors.New("mist: not found")
	ErrAuth     = errors.New("mist: authentication failed")
)

// Client is a thin bearer-token HTTP client for the Mist cloud API. One
// shot per call, fixed timeout; retry policy is deliberately not here.
type Client struct {
	baseURL string
	orgID   string
	token   string
	http    *http.Client
}

func NewClient(cfg config.APIConfig) (*Client, error) {
	token := os.Getenv(cfg.TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("%w: export %s", ErrNoToken, cfg.TokenEnv)
	}

	orgID := cfg.OrgID
	if orgID == "" {
		orgID = os.Getenv("MIST_ORG_ID")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		orgID:   orgID,
		token:   token,
		http: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: transport,
		},
	}, nil
}

// OrgID returns the organization the client is scoped to.
func (c *Client) OrgID() string { return c.orgID }

// SetOrgID scopes the client to an organization, used after auto-detect.
func (c *Client) SetOrgID(id string) { c.orgID = id }

// Org is one organization the API token can access.
type Org struct {
	ID   string `json:"org_id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Organizations lists the orgs visible to the token, from the privileges
// of /self.
func (c *Client) Organizations(ctx context.Context) ([]Org, error) {
	var self struct {
		Privileges []Org `json:"privileges"`
	}
	if err := c.get(ctx, "/self", nil, &self); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var orgs []Org
	for _, p := range self.Privileges {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		orgs = append(orgs, p)
	}
	return orgs, nil
}

// Site is one site within the organization.
type Site struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	var sites []Site
	err := c.get(ctx, fmt.Sprintf("/orgs/%s/sites", c.orgID), nil, &sites)
	return sites, err
}

// SiteClientStats returns live stats for currently connected clients of a
// site, optionally filtered by MAC.
func (c *Client) SiteClientStats(ctx context.Context, siteID, mac string) ([]telemetry.ClientStat, error) {
	q := url.Values{}
	if mac != "" {
		q.Set("mac", mac)
	}
	var stats []telemetry.ClientStat
	err := c.get(ctx, fmt.Sprintf("/sites/%s/stats/clients", siteID), q, &stats)
	return stats, err
}

// SearchClient looks a client up in the org-wide historical record within
// [start, end]. Returns ErrNotFound when the window holds no match.
func (c *Client) SearchClient(ctx context.Context, mac string, start, end time.Time) (*telemetry.ClientStat, error) {
	q := url.Values{}
	q.Set("mac", mac)
	q.Set("limit", "1")
	q.Set("start", fmt.Sprint(start.Unix()))
	q.Set("end", fmt.Sprint(end.Unix()))

	var resp struct {
		Results []telemetry.ClientStat `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/orgs/%s/clients/search", c.orgID), q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

type eventWire struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
	Reason    string  `json:"reason"`
	Text      string  `json:"text"`
	AP        string  `json:"ap"`
	SSID      string  `json:"ssid"`
}

// ClientEvents fetches the client's event history within [start, end].
// Timestamps come back as epoch seconds and are converted here.
func (c *Client) ClientEvents(ctx context.Context, mac string, start, end time.Time, limit int) ([]telemetry.ClientEvent, error) {
	q := url.Values{}
	q.Set("start", fmt.Sprint(start.Unix()))
	q.Set("end", fmt.Sprint(end.Unix()))
	q.Set("limit", fmt.Sprint(limit))

	var resp struct {
		Results []eventWire `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/orgs/%s/clients/%s/events", c.orgID, mac), q, &resp); err != nil {
		return nil, err
	}

	events := make([]telemetry.ClientEvent, 0, len(resp.Results))
	for _, w := range resp.Results {
		sec := int64(w.Timestamp)
		nsec := int64((w.Timestamp - float64(sec)) * 1e9)
		events = append(events, telemetry.ClientEvent{
			Type:      w.Type,
			Timestamp: time.Unix(sec, nsec).UTC(),
			Reason:    w.Reason,
			Text:      w.Text,
			APMAC:     w.AP,
			SSID:      w.SSID,
		})
	}
	return events, nil
}

// Device is one inventory entry of a site, used to resolve AP names and
// IDs from the MAC the client stat references.
type Device struct {
	ID     string `json:"id"`
	MAC    string `json:"mac"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Model  string `json:"model"`
	Status string `json:"status"`
}

func (c *Client) ListDevices(ctx context.Context, siteID string) ([]Device, error) {
	var devices []Device
	err := c.get(ctx, fmt.Sprintf("/sites/%s/devices", siteID), nil, &devices)
	return devices, err
}

// FindAP resolves the AP device record for a MAC within a site, or
// ErrNotFound when no AP matches.
func (c *Client) FindAP(ctx context.Context, siteID, apMAC string) (*Device, error) {
	devices, err := c.ListDevices(ctx, siteID)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].Type == "ap" && telemetry.SameMAC(devices[i].MAC, apMAC) {
			return &devices[i], nil
		}
	}
	return nil, ErrNotFound
}

type deviceStatsWire struct {
	MAC       string `json:"mac"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Model     string `json:"model"`
	Status    string `json:"status"`
	Uptime    *int64 `json:"uptime"`
	CPUUtil   *int   `json:"cpu_util"`
	MemUtil   *int   `json:"mem_util"`
	RadioStat map[string]struct {
		UtilAll *int `json:"util_all"`
	} `json:"radio_stat"`
}

// DeviceStats fetches live stats for one device (uptime, CPU/memory,
// per-radio channel utilization).
func (c *Client) DeviceStats(ctx context.Context, siteID, deviceID string) (*telemetry.APStat, error) {
	var w deviceStatsWire
	if err := c.get(ctx, fmt.Sprintf("/sites/%s/stats/devices/%s", siteID, deviceID), nil, &w); err != nil {
		return nil, err
	}

	stat := &telemetry.APStat{
		MAC:     w.MAC,
		ID:      w.ID,
		Name:    w.Name,
		Model:   w.Model,
		Status:  w.Status,
		Uptime:  w.Uptime,
		CPUUtil: w.CPUUtil,
		MemUtil: w.MemUtil,
	}
	for band, rs := range w.RadioStat {
		if rs.UtilAll == nil {
			continue
		}
		if stat.RadioUtil == nil {
			stat.RadioUtil = make(map[string]int)
		}
		stat.RadioUtil[band] = *rs.UtilAll
	}
	return stat, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	log.Debug().Str("path", path).Msg("api request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("GET %s: %w", path, ErrAuth)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}
