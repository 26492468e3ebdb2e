package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"SignalSentinel/internal/alert"
	"SignalSentinel/internal/api"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/cycle"
	"SignalSentinel/internal/ledger"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/strategy"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Int("assets", len(cfg.Assets)).Str("source", cfg.PriceSource.Provider).Msg("SignalSentinel starting")

	// Price source
	fetcher, err := collector.New(cfg.PriceSource.Provider, cfg.PriceSource.BaseURL, cfg.PriceSource.Tickers, cfg.PriceSource.Timeout, cfg.Proxy)
	if err != nil {
		log.Fatal().Err(err).Msg("init price source")
	}

	// Alert ledger
	store, err := ledger.New(ledger.Options{
		Backend: cfg.Ledger.Backend,
		Path:    cfg.Ledger.Path,
		Redis: ledger.RedisConfig{
			Addr:     cfg.Ledger.Redis.Addr,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
			Key:      cfg.Ledger.Redis.Key,
		},
		URL:     cfg.Ledger.URL,
		Token:   cfg.Ledger.Token,
		Timeout: cfg.PriceSource.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init alert ledger")
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	log.Info().Str("backend", cfg.Ledger.Backend).Int("capacity", cfg.Ledger.Capacity).Msg("alert ledger ready")

	// History recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Notifiers
	var notifiers notifier.Multi
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		notifiers = append(notifiers, tn)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kn, err := notifier.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("init kafka notifier")
		}
		defer kn.Close()
		notifiers = append(notifiers, kn)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Orchestrator
	opts := []cycle.Option{cycle.WithHistory(rec), cycle.WithMetrics(m)}
	if len(notifiers) > 0 {
		opts = append(opts, cycle.WithNotifier(notifiers))
	}
	orch := cycle.New(
		cycle.Options{
			Assets:      cfg.Assets,
			Interval:    cfg.PriceSource.Interval,
			Limit:       cfg.PriceSource.Limit,
			Concurrency: cfg.Concurrency,
		},
		fetcher,
		strategy.NewClassifier(strategy.Thresholds{Oversold: cfg.Thresholds.Oversold, Overbought: cfg.Thresholds.Overbought}),
		alert.NewRecorder(store, cfg.Ledger.Capacity, log),
		log,
		opts...,
	)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	sched := scheduler.NewScheduler(ctx, orch, store, log)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// Status server
	srv := api.NewServer(cfg.Server.Addr, orch, store, rec, reg, log)
	srv.Start()

	// Telegram commands
	if tn != nil && !cfg.Telegram.NoPolling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("RUN_ON_START enabled, running a cycle now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Error().Err(err).Msg("startup cycle")
			}
		}()
	}

	log.Info().Str("schedule", cfg.Schedule.Cron).Msg("SignalSentinel is running, press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("stop http server")
	}
	log.Info().Msg("SignalSentinel stopped")
}
