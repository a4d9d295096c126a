package netcheck

import (
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/vishvananda/netlink"

	"github.com/adnanq/wlandiag/internal/probe"
	"github.com/adnanq/wlandiag/internal/rules"
)

// Domains resolved to verify DNS from the probe host's point of view.
var dnsTestDomains = []string{"google.com", "cloudflare.com"}

// Checker runs local infrastructure checks from the machine the tool is
// invoked on. Only consulted when DHCP/DNS failure events fired, to tell
// a client-side problem apart from a site-wide one.
type Checker struct {
	pinger *probe.Pinger
}

func New(pinger *probe.Pinger) *Checker {
	return &Checker{pinger: pinger}
}

// Run performs the DNS and gateway checks and returns the infra findings.
// Failures of the checks themselves degrade to findings, never errors;
// partial local visibility should not abort a session.
func (c *Checker) Run() []rules.Finding {
	var findings []rules.Finding
	findings = append(findings, c.checkDNS()...)
	findings = append(findings, c.checkGateway()...)
	return findings
}

func (c *Checker) checkDNS() []rules.Finding {
	failures := 0
	for _, domain := range dnsTestDomains {
		if _, err := net.LookupHost(domain); err != nil {
			failures++
			log.Debug().Str("domain", domain).Err(err).Msg("dns lookup failed")
		}
	}
	if failures > len(dnsTestDomains)/2 {
		return []rules.Finding{{
			Category: rules.CategoryInfra,
			Severity: rules.SeverityHigh,
			Metric:   "DNS",
			Value:    fmt.Sprintf("%d/%d failed", failures, len(dnsTestDomains)),
			Message:  fmt.Sprintf("local DNS resolution failing for %d of %d test domains", failures, len(dnsTestDomains)),
		}}
	}
	return nil
}

func (c *Checker) checkGateway() []rules.Finding {
	gw, err := DefaultGateway()
	if err != nil {
		log.Debug().Err(err).Msg("default gateway not determined, skipping check")
		return nil
	}

	metrics, err := c.pinger.Run(gw.String())
	if err != nil || metrics.PacketsRecv == 0 {
		return []rules.Finding{{
			Category:   rules.CategoryInfra,
			Severity:   rules.SeverityHigh,
			Metric:     "Gateway",
			Value:      gw.String(),
			Message:    fmt.Sprintf("default gateway %s unreachable from probe host", gw),
			Suggestion: "check local LAN path before blaming the wireless side",
		}}
	}
	return nil
}

// DefaultGateway reads the IPv4 routing table and returns the gateway of
// the default route.
func DefaultGateway() (net.IP, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	for _, r := range routes {
		if r.Dst == nil && r.Gw != nil { // 0.0.0.0/0
			return r.Gw, nil
		}
	}
	return nil, errors.New("no default route found")
}
