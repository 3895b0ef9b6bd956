package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 12, cfg.Indicators.MACDFast)
	assert.Equal(t, 26, cfg.Indicators.MACDSlow)
	assert.Equal(t, 9, cfg.Indicators.MACDSignal)
	assert.Equal(t, 14, cfg.Indicators.RSIWindow)
	assert.Equal(t, 1200, cfg.Chart.Width)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
data_source:
  provider: rest
  base_url: http://localhost:9000
  timeout: 5s
indicators:
  rsi_window: 10
  moving_averages: [20, 50]
telegram:
  bot_token: from-file
  chat_id: 42
watch:
  symbols: [AAPL, MSFT]
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("CHART_OUTPUT_DIR", "/tmp/out")
	t.Setenv("WATCH_SYMBOLS", "TSLA,NVDA")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, 5*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 10, cfg.Indicators.RSIWindow)
	assert.Equal(t, []int{20, 50}, cfg.Indicators.MovingAverages)
	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, "/tmp/out", cfg.Chart.OutputDir)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.Watch.Symbols)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.ValidateWatch())
}

func TestLoad_BadYAML(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(writeConfig(t, "data_source: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }},
		{"fast not below slow", func(c *Config) { c.Indicators.MACDFast = 30 }},
		{"negative rsi window", func(c *Config) { c.Indicators.RSIWindow = -1 }},
		{"inverted thresholds", func(c *Config) { c.Indicators.Oversold = 80 }},
		{"bad moving average", func(c *Config) { c.Indicators.MovingAverages = []int{0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
