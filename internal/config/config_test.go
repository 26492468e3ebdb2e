package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Assets) != 18 || cfg.Assets[0] != "bitcoin" {
		t.Errorf("assets = %v", cfg.Assets)
	}
	if cfg.PriceSource.Tickers["polygon"] != "MATICUSDT" {
		t.Errorf("tickers = %v", cfg.PriceSource.Tickers)
	}
	if cfg.PriceSource.Interval != "1h" || cfg.PriceSource.Limit != 500 {
		t.Errorf("interval/limit = %s/%d", cfg.PriceSource.Interval, cfg.PriceSource.Limit)
	}
	if cfg.PriceSource.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.PriceSource.Timeout)
	}
	if cfg.Thresholds.Oversold != 30 || cfg.Thresholds.Overbought != 70 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Ledger.Backend != "file" || cfg.Ledger.Capacity != 100 {
		t.Errorf("ledger = %+v", cfg.Ledger)
	}
	if cfg.Schedule.Cron != "@every 10m" {
		t.Errorf("cron = %q", cfg.Schedule.Cron)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
price_source:
  provider: coingecko
  timeout: 3s
assets: [bitcoin, ethereum]
thresholds:
  oversold: 25
  overbought: 75
ledger:
  capacity: 50
`)
	t.Setenv("ASSETS", "solana, xrp ,")
	t.Setenv("LEDGER_BACKEND", "redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if strings.Join(cfg.Assets, ",") != "solana,xrp" {
		t.Errorf("assets = %v", cfg.Assets)
	}
	if cfg.PriceSource.Provider != "coingecko" || cfg.PriceSource.Timeout != 3*time.Second {
		t.Errorf("price source = %+v", cfg.PriceSource)
	}
	if len(cfg.PriceSource.Tickers) != 0 {
		t.Errorf("binance pairs should not be defaulted for coingecko")
	}
	if cfg.Thresholds.Oversold != 25 || cfg.Ledger.Capacity != 50 {
		t.Errorf("file values lost: %+v %+v", cfg.Thresholds, cfg.Ledger)
	}
	if cfg.Ledger.Backend != "redis" || cfg.Ledger.Redis.Addr != "localhost:6379" {
		t.Errorf("ledger = %+v", cfg.Ledger)
	}
	if len(cfg.Kafka.Brokers) != 2 || !cfg.Schedule.RunOnStart {
		t.Errorf("kafka/run_on_start = %v/%v", cfg.Kafka.Brokers, cfg.Schedule.RunOnStart)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeConfig(t, "assets: [unterminated")); err == nil {
		t.Error("expected parse error")
	}
	t.Setenv("RUN_ON_START", "maybe")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected RUN_ON_START error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"inverted thresholds", "thresholds: {oversold: 80, overbought: 70}", "Oversold"},
		{"unknown provider", "price_source: {provider: kraken}", "Provider"},
		{"remote without url", "ledger: {backend: remote}", "URL"},
		{"chat id missing", "telegram: {bot_token: abc}", "ChatID"},
		{"short limit", "price_source: {limit: 20}", "Limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
