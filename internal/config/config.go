package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPairs is the default asset basket, keyed by the
// asset name used in alerts and mapped to its Binance pair.
var DefaultPairs = map[string]string{
	"bitcoin":   "BTCUSDT",
	"ethereum":  "ETHUSDT",
	"bnb":       "BNBUSDT",
	"solana":    "SOLUSDT",
	"arbitrum":  "ARBUSDT",
	"optimism":  "OPUSDT",
	"polygon":   "MATICUSDT",
	"render":    "RNDRUSDT",
	"injective": "INJUSDT",
	"fet":       "FETUSDT",
	"aave":      "AAVEUSDT",
	"uniswap":   "UNIUSDT",
	"sand":      "SANDUSDT",
	"mana":      "MANAUSDT",
	"axie":      "AXSUSDT",
	"xrp":       "XRPUSDT",
	"tia":       "TIAUSDT",
	"sei":       "SEIUSDT",
}

// DefaultAssets is the evaluation order of DefaultPairs.
var DefaultAssets = []string{
	"bitcoin", "ethereum", "bnb", "solana", "arbitrum", "optimism",
	"polygon", "render", "injective", "fet", "aave", "uniswap",
	"sand", "mana", "axie", "xrp", "tia", "sei",
}

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	} `yaml:"log"`
	Telegram struct {
		BotToken  string `yaml:"bot_token"`
		ChatID    string `yaml:"chat_id" validate:"required_with=BotToken"`
		NoPolling bool   `yaml:"no_polling"`
	} `yaml:"telegram"`
	PriceSource struct {
		Provider string            `yaml:"provider" default:"binance" validate:"oneof=binance coingecko yahoo"`
		BaseURL  string            `yaml:"base_url"`
		Interval string            `yaml:"interval" default:"1h" validate:"required"`
		Limit    int               `yaml:"limit" default:"500" validate:"gte=35,lte=1000"`
		Timeout  time.Duration     `yaml:"timeout" default:"10s" validate:"gt=0"`
		Tickers  map[string]string `yaml:"tickers"`
	} `yaml:"price_source"`
	Assets      []string `yaml:"assets" validate:"required,min=1,dive,required"`
	Concurrency int      `yaml:"concurrency" default:"4" validate:"gte=1,lte=32"`
	Thresholds  struct {
		Oversold   float64 `yaml:"oversold" default:"30" validate:"gt=0,ltfield=Overbought"`
		Overbought float64 `yaml:"overbought" default:"70" validate:"lt=100"`
	} `yaml:"thresholds"`
	Ledger struct {
		Backend  string `yaml:"backend" default:"file" validate:"oneof=file redis remote"`
		Path     string `yaml:"path" default:"data/alerts.json" validate:"required_if=Backend file"`
		Capacity int    `yaml:"capacity" default:"100" validate:"gt=0"`
		URL      string `yaml:"url" validate:"required_if=Backend remote"`
		Token    string `yaml:"token"`
		Redis    struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key" default:"signalsentinel:alerts"`
		} `yaml:"redis"`
	} `yaml:"ledger"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic" default:"signalsentinel.alerts"`
	} `yaml:"kafka"`
	Schedule struct {
		Cron       string `yaml:"cron" default:"@every 10m" validate:"required"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr" default:":8080"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/signal_sentinel.db"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load reads config from a YAML file, applies environment variable overrides
// and fills in defaults. A missing file is not an error.
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

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = append([]string(nil), DefaultAssets...)
	}
	if len(cfg.PriceSource.Tickers) == 0 && cfg.PriceSource.Provider == "binance" {
		cfg.PriceSource.Tickers = make(map[string]string, len(DefaultPairs))
		for k, v := range DefaultPairs {
			cfg.PriceSource.Tickers[k] = v
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"PRICE_SOURCE":       &cfg.PriceSource.Provider,
		"LEDGER_BACKEND":     &cfg.Ledger.Backend,
		"LEDGER_PATH":        &cfg.Ledger.Path,
		"REDIS_ADDR":         &cfg.Ledger.Redis.Addr,
		"ALERTS_URL":         &cfg.Ledger.URL,
		"ALERTS_TOKEN":       &cfg.Ledger.Token,
		"SQLITE_PATH":        &cfg.Database.SQLitePath,
		"CRON_SCHEDULE":      &cfg.Schedule.Cron,
		"HTTPS_PROXY":        &cfg.Proxy,
		"LOG_LEVEL":          &cfg.Log.Level,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("ASSETS"); v != "" {
		cfg.Assets = splitList(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		cfg.Schedule.RunOnStart = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
