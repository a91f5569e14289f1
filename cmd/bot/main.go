package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"marketbrief/internal/briefing"
	"marketbrief/internal/config"
	"marketbrief/internal/logging"
	"marketbrief/internal/macro"
	"marketbrief/internal/notifier"
	"marketbrief/internal/pipeline"
	"marketbrief/internal/provider"
	"marketbrief/internal/recorder"
	"marketbrief/internal/scheduler"
	"marketbrief/internal/spread"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config validation")
	}
	if err := logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		logrus.WithError(err).Fatal("logging setup")
	}
	logrus.Info("marketbrief starting")

	retry := pipeline.RetryPolicy{
		MaxAttempts: cfg.Acquisition.MaxAttempts,
		MinDelay:    cfg.Acquisition.MinDelay,
		MaxDelay:    cfg.Acquisition.MaxDelay,
	}

	// Provider chain in priority order. Tiers without API keys fail over
	// immediately at runtime.
	chart := provider.NewChartProvider("", cfg.Proxy)
	seriesProviders := []provider.SeriesProvider{
		chart,
		provider.NewAlphaVantageProvider("", cfg.Providers.AlphaVantageKey, cfg.Proxy),
		provider.NewFMPProvider("", cfg.Providers.FMPKey, cfg.Proxy),
	}
	acquirer := pipeline.NewAcquirer(seriesProviders, retry, cfg.Acquisition.HistoryBars)

	rates := pipeline.NewRateAcquirer([]provider.RateProvider{
		provider.NewExchangeRateAPIProvider("", cfg.Proxy),
		chart,
	}, retry)

	spreads := spread.NewCollector(
		provider.NewUpbitProvider("", cfg.Proxy),
		provider.NewCoinGeckoProvider("", cfg.Proxy),
		nil,
		cfg.Spread.ThresholdPct,
		retry,
	)

	fred := provider.NewFREDProvider("", cfg.Providers.FREDKey, cfg.Proxy)
	macroCollector := macro.NewCollector(fred, chart, nil)
	if !fred.Configured() {
		logrus.Warn("FRED api key not set, macro collection limited to VIX")
	}

	runner := briefing.NewRunner(cfg.Requests(), acquirer)
	runner.Rates = rates
	runner.Spreads = spreads
	runner.Macro = macroCollector
	runner.FallbackFX = cfg.Spread.FallbackFX
	runner.Pacing = cfg.Acquisition.Pacing

	var n notifier.Notifier = notifier.Noop{}
	var tg *notifier.Telegram
	if cfg.TelegramConfigured() {
		tg, err = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			logrus.WithError(err).Fatal("init telegram")
		}
		n = tg
	} else {
		logrus.Warn("telegram not configured, briefings will only be logged")
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logrus.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, runner, n, rec)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		logrus.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tg != nil {
		go tg.StartPolling(ctx, sched.HandleCommand)
		logrus.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logrus.Info("RUN_ON_START enabled, executing briefing now")
		go sched.RunDailyNow()
	}

	logrus.Info("marketbrief is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutdown signal received, stopping")
	cancel()
	logrus.Info("marketbrief stopped")
}
