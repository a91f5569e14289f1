package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"marketbrief/internal/model"
)

// Instrument is one configured watchlist entry.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Class  string `yaml:"class"`  // equity, index, crypto, fx
	Market string `yaml:"market"` // us, kr
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Providers struct {
		AlphaVantageKey string `yaml:"alphavantage_key"`
		FMPKey          string `yaml:"fmp_key"`
		FREDKey         string `yaml:"fred_key"`
	} `yaml:"providers"`
	Instruments []Instrument `yaml:"instruments"`
	Acquisition struct {
		HistoryBars int           `yaml:"history_bars"`
		Pacing      time.Duration `yaml:"pacing"`
		MaxAttempts int           `yaml:"max_attempts"`
		MinDelay    time.Duration `yaml:"min_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
	} `yaml:"acquisition"`
	Spread struct {
		ThresholdPct float64 `yaml:"threshold_pct"`
		FallbackFX   float64 `yaml:"fallback_fx"`
	} `yaml:"spread"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Providers.AlphaVantageKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.Providers.FMPKey = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		cfg.Providers.FREDKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = []Instrument{
			{Symbol: "^GSPC", Name: "S&P 500", Class: "index", Market: "us"},
			{Symbol: "^IXIC", Name: "NASDAQ", Class: "index", Market: "us"},
			{Symbol: "^KS11", Name: "KOSPI", Class: "index", Market: "kr"},
		}
	}
	if cfg.Acquisition.HistoryBars == 0 {
		cfg.Acquisition.HistoryBars = 300
	}
	if cfg.Acquisition.Pacing == 0 {
		cfg.Acquisition.Pacing = time.Second
	}
	if cfg.Acquisition.MaxAttempts == 0 {
		cfg.Acquisition.MaxAttempts = 3
	}
	if cfg.Acquisition.MinDelay == 0 {
		cfg.Acquisition.MinDelay = 2 * time.Second
	}
	if cfg.Acquisition.MaxDelay == 0 {
		cfg.Acquisition.MaxDelay = 10 * time.Second
	}
	if cfg.Spread.ThresholdPct == 0 {
		cfg.Spread.ThresholdPct = 2.0
	}
	if cfg.Spread.FallbackFX == 0 {
		cfg.Spread.FallbackFX = 1320.0
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 8 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/marketbrief.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	return cfg, nil
}

// Requests converts the configured instruments into pipeline requests.
func (c *Config) Requests() []model.InstrumentRequest {
	reqs := make([]model.InstrumentRequest, 0, len(c.Instruments))
	for _, in := range c.Instruments {
		reqs = append(reqs, model.InstrumentRequest{
			Symbol: in.Symbol,
			Name:   in.Name,
			Class:  model.AssetClass(in.Class),
			Market: model.Market(in.Market),
		})
	}
	return reqs
}

// TelegramConfigured reports whether delivery credentials are present.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

// Validate checks that the configuration is internally consistent. Missing
// provider keys are allowed; those tiers degrade at runtime.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments must not be empty")
	}
	for _, in := range c.Instruments {
		if in.Symbol == "" {
			return fmt.Errorf("instrument with empty symbol")
		}
	}
	if c.Acquisition.MinDelay > c.Acquisition.MaxDelay {
		return fmt.Errorf("acquisition.min_delay exceeds max_delay")
	}
	if c.Spread.ThresholdPct < 0 {
		return fmt.Errorf("spread.threshold_pct must not be negative")
	}
	if c.Spread.FallbackFX <= 0 {
		return fmt.Errorf("spread.fallback_fx must be positive")
	}
	return nil
}
