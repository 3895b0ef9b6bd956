package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider       string        `yaml:"provider" envconfig:"PROVIDER"`
		BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL"`
		APIKey         string        `yaml:"api_key" envconfig:"API_KEY"`
		Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
		RequestsPerSec int           `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC"`
		MaxRetry       time.Duration `yaml:"max_retry" envconfig:"MAX_RETRY"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Indicators struct {
		MACDFast       int     `yaml:"macd_fast" envconfig:"MACD_FAST"`
		MACDSlow       int     `yaml:"macd_slow" envconfig:"MACD_SLOW"`
		MACDSignal     int     `yaml:"macd_signal" envconfig:"MACD_SIGNAL"`
		RSIWindow      int     `yaml:"rsi_window" envconfig:"RSI_WINDOW"`
		Overbought     float64 `yaml:"overbought" envconfig:"OVERBOUGHT"`
		Oversold       float64 `yaml:"oversold" envconfig:"OVERSOLD"`
		MovingAverages []int   `yaml:"moving_averages" envconfig:"MOVING_AVERAGES"`
	} `yaml:"indicators" envconfig:"INDICATORS"`
	Chart struct {
		Width     int    `yaml:"width" envconfig:"WIDTH"`
		Height    int    `yaml:"height" envconfig:"HEIGHT"`
		OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	} `yaml:"chart" envconfig:"CHART"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database" envconfig:"DATABASE"`
	Server struct {
		Addr string `yaml:"addr" envconfig:"ADDR"`
	} `yaml:"server" envconfig:"SERVER"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   int64  `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Watch struct {
		Cron         string   `yaml:"cron" envconfig:"CRON"`
		Symbols      []string `yaml:"symbols" envconfig:"SYMBOLS"`
		LookbackDays int      `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
		Interval     string   `yaml:"interval" envconfig:"INTERVAL"`
	} `yaml:"watch" envconfig:"WATCH"`
	Log struct {
		Level string `yaml:"level" envconfig:"LEVEL"`
	} `yaml:"log" envconfig:"LOG"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides (e.g. TELEGRAM_BOT_TOKEN, CHART_OUTPUT_DIR)
// and finally fills defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.RequestsPerSec == 0 {
		c.DataSource.RequestsPerSec = 5
	}
	if c.DataSource.MaxRetry == 0 {
		c.DataSource.MaxRetry = 30 * time.Second
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = 9
	}
	if c.Indicators.RSIWindow == 0 {
		c.Indicators.RSIWindow = 14
	}
	if c.Indicators.Overbought == 0 {
		c.Indicators.Overbought = 70
	}
	if c.Indicators.Oversold == 0 {
		c.Indicators.Oversold = 30
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 800
	}
	if c.Chart.OutputDir == "" {
		c.Chart.OutputDir = "charts"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_chart_viewer.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "0 30 16 * * 1-5"
	}
	if c.Watch.LookbackDays == 0 {
		c.Watch.LookbackDays = 180
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = "1d"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks fields every command depends on.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	ind := c.Indicators
	if ind.MACDFast <= 0 || ind.MACDSlow <= 0 || ind.MACDSignal <= 0 {
		return fmt.Errorf("indicators.macd spans must be positive")
	}
	if ind.MACDFast >= ind.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be smaller than macd_slow")
	}
	if ind.RSIWindow <= 0 {
		return fmt.Errorf("indicators.rsi_window must be positive")
	}
	if ind.Oversold >= ind.Overbought {
		return fmt.Errorf("indicators.oversold must be below overbought")
	}
	for _, p := range ind.MovingAverages {
		if p <= 0 {
			return fmt.Errorf("indicators.moving_averages must be positive, got %d", p)
		}
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be positive")
	}
	return nil
}

// ValidateTelegram checks the fields needed to talk to Telegram.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// ValidateWatch checks the watchlist settings.
func (c *Config) ValidateWatch() error {
	if len(c.Watch.Symbols) == 0 {
		return fmt.Errorf("watch.symbols must list at least one symbol")
	}
	if c.Watch.LookbackDays <= 0 {
		return fmt.Errorf("watch.lookback_days must be positive")
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.ValidateTelegram() == nil
}
