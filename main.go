package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedpulse/internal/analyzer"
	"feedpulse/internal/analyzer/providers"
	"feedpulse/internal/config"
	"feedpulse/internal/fetcher"
	"feedpulse/internal/logging"
	"feedpulse/internal/monitor"
	"feedpulse/internal/notifier"
	"feedpulse/internal/orchestrator"
	"feedpulse/internal/scheduler"
	"feedpulse/internal/server"
	"feedpulse/internal/store"
)

func main() {
	configPath := flag.String("config", "feedpulse.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: write defaults so there is something to edit.
			cfg = config.Default()
			if err := cfg.Save(*configPath); err != nil {
				fmt.Fprintf(os.Stderr, "could not save default config: %v\n", err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
			os.Exit(1)
		}
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.File)
	log.Info().Str("config", *configPath).Msg("feedpulse starting")

	// A failure to open the storage layer is the only fatal startup error.
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("opening store failed")
	}
	defer st.Close()

	for _, seed := range cfg.Accounts {
		if err := st.AddAccount(seed.Handle, seed.DisplayName); err != nil {
			log.Warn().Err(err).Str("handle", seed.Handle).Msg("account seed failed")
		}
	}

	client := fetcher.New(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.MaxResults, cfg.PlatformTimeout())

	var backend analyzer.Backend
	switch cfg.Analysis.Provider {
	case config.ProviderAnthropic:
		backend = providers.NewAnthropicBackend(cfg.Analysis.APIKey, cfg.Analysis.Model)
	default:
		log.Fatal().Str("provider", cfg.Analysis.Provider).Msg("unknown analysis provider")
	}
	coordinator := analyzer.New(backend, st, cfg.Analysis.MaxKeywords, cfg.Analysis.MaxSummaryLen, log)

	notif, err := notifier.NewFromConfig(cfg.Notify, log)
	if err != nil {
		log.Fatal().Err(err).Msg("creating notifier failed")
	}

	mon := monitor.New(client, st, log)
	orch := orchestrator.New(st, mon, coordinator, st, notif, cfg.Monitor.MaxConcurrentFetches, log)

	sched := scheduler.New(cfg.Monitor.Schedule, func(ctx context.Context) {
		orch.RunCycle(ctx)
	}, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Monitor.Schedule).Msg("starting scheduler failed")
	}

	var admin *server.Server
	if cfg.Admin.Enabled {
		admin = server.New(cfg.Admin.Addr, sched, log)
		admin.Start()
	}

	// Hot-reload the knobs that can change without a restart.
	stopWatch, err := config.Watch(*configPath,
		func(next *config.Config) {
			logging.SetLevel(next.Logging.Level)
			notif.SetRate(next.Notify.RatePerSec)
			log.Info().Msg("config reloaded")
		},
		func(err error) {
			log.Warn().Err(err).Msg("config reload failed, keeping previous config")
		},
	)
	if err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	} else {
		defer stopWatch()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	sched.Stop()
	if admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		admin.Shutdown(ctx)
	}
}
