package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adnanq/wlandiag/internal/config"
	"github.com/adnanq/wlandiag/internal/logger"
	"github.com/adnanq/wlandiag/internal/mist"
	"github.com/adnanq/wlandiag/internal/netcheck"
	"github.com/adnanq/wlandiag/internal/probe"
	"github.com/adnanq/wlandiag/internal/report"
	"github.com/adnanq/wlandiag/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file (optional)")
		target     = flag.String("target", "", "client MAC or IP address to troubleshoot")
		hours      = flag.Int("hours", 24, "trailing hours of event history to analyze")
		jsonOut    = flag.Bool("json", false, "emit the report as JSON")
		verbose    = flag.Bool("verbose", false, "verbose report output")
		localCheck = flag.Bool("local-checks", true, "run local DNS/gateway checks when infra events fire")
	)
	flag.Parse()

	if *target == "" {
		fmt.Fprintln(os.Stderr, "usage: wlandiag -target <mac|ip> [-hours 24] [-json] [-verbose]")
		flag.PrintDefaults()
		return 1
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	logger.Init(cfg.Logging)
	if cfg.Logging.Dir != "" {
		path, closeFn, err := logger.SessionFile(cfg.Logging, cfg.Logging.Dir)
		if err != nil {
			log.Warn().Err(err).Msg("session log file unavailable, console only")
		} else {
			defer closeFn()
			log.Info().Str("file", path).Msg("session log")
		}
	}

	client, err := mist.NewClient(cfg.API)
	if err != nil {
		log.Error().Err(err).Msg("cannot reach controller API")
		return 1
	}

	ctx := context.Background()

	if client.OrgID() == "" {
		if err := autoSelectOrg(ctx, client); err != nil {
			log.Error().Err(err).Msg("organization not determined")
			return 1
		}
	}

	pinger := probe.NewPinger(cfg.Probe.Count, cfg.Probe.Timeout(), cfg.Probe.Privileged)

	var local session.LocalChecker
	if *localCheck {
		local = netcheck.New(pinger)
	}

	orch := session.New(client, pinger, local, cfg.Thresholds)

	result, err := orch.Run(ctx, *target, time.Duration(*hours)*time.Hour)
	if err != nil {
		log.Error().Err(err).Msg("troubleshooting session failed")
		if result != nil {
			render(result, *jsonOut, *verbose)
		}
		return 1
	}

	render(result, *jsonOut, *verbose)

	if len(cfg.Publish.Brokers) > 0 {
		publish(ctx, cfg, result)
	}

	// Finding issues is a successful diagnosis; only failing to diagnose
	// is an error.
	switch result.Status {
	case session.StatusNotFound, session.StatusFetchError:
		return 1
	default:
		return 0
	}
}

func render(result *session.Result, jsonOut, verbose bool) {
	if jsonOut {
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			log.Error().Err(err).Msg("failed to encode report")
		}
		return
	}
	report.WriteText(os.Stdout, result, verbose)
}

// autoSelectOrg picks the organization when exactly one is visible to the
// token; with several, the choice has to come from config or env.
func autoSelectOrg(ctx context.Context, client *mist.Client) error {
	orgs, err := client.Organizations(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	switch len(orgs) {
	case 0:
		return fmt.Errorf("API token has no organization privileges")
	case 1:
		log.Info().Str("org", orgs[0].Name).Str("org_id", orgs[0].ID).Msg("auto-selected organization")
		client.SetOrgID(orgs[0].ID)
		return nil
	default:
		for _, o := range orgs {
			log.Info().Str("org", o.Name).Str("org_id", o.ID).Msg("available organization")
		}
		return fmt.Errorf("token can access %d organizations; set api.org_id or MIST_ORG_ID", len(orgs))
	}
}

func publish(ctx context.Context, cfg *config.Config, result *session.Result) {
	pub, err := report.NewPublisher(cfg.Publish.Brokers, cfg.Publish.Topic)
	if err != nil {
		log.Warn().Err(err).Msg("session publisher unavailable")
		return
	}
	defer pub.Close()

	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pub.Publish(pubCtx, result); err != nil {
		log.Warn().Err(err).Msg("failed to publish session result")
		return
	}
	log.Info().Str("topic", cfg.Publish.Topic).Msg("session result published")
}
