package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockChartViewer/internal/calculator"
	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/config"
	"StockChartViewer/internal/recorder"
	"StockChartViewer/internal/renderer"
	"StockChartViewer/internal/strategy"
)

var rootCmd = &cobra.Command{
	Use:   "viewer",
	Short: "stock chart viewer with MACD and RSI",
	Long:  "Fetches daily prices for a ticker and renders candlesticks, volume, MACD and RSI.",

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs/config.yaml", "config file")
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging")
	rootCmd.PersistentFlags().Bool("mock", false, "use synthetic prices instead of a live data source")

	rootCmd.AddCommand(chartCmd, serveCmd, watchCmd, botCmd, historyCmd)
}

// app holds the components shared by every subcommand.
type app struct {
	cfg       *config.Config
	recorder  recorder.Recorder
	collector *collector.Collector
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Error().Err(err).Msg("close recorder")
	}
}

func (a *app) chartOptions() renderer.Options {
	return renderer.Options{
		Width:    a.cfg.Chart.Width,
		Height:   a.cfg.Chart.Height,
		RSIUpper: a.cfg.Indicators.Overbought,
		RSILower: a.cfg.Indicators.Oversold,
	}
}

func (a *app) thresholds() strategy.Thresholds {
	return strategy.Thresholds{Overbought: a.cfg.Indicators.Overbought, Oversold: a.cfg.Indicators.Oversold}
}

func setupLogger(level string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// newApp loads configuration and builds the recorder, fetcher and collector.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	mock, _ := cmd.Flags().GetBool("mock")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.Log.Level, debug)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	opts := collector.ClientOptions{
		Timeout:         cfg.DataSource.Timeout,
		RequestsPerSec:  cfg.DataSource.RequestsPerSec,
		MaxRetryTimeout: cfg.DataSource.MaxRetry,
		Proxy:           cfg.Proxy,
	}
	var fetcher collector.Fetcher
	switch {
	case mock:
		fetcher = &collector.MockFetcher{Price: 100}
	case cfg.DataSource.Provider == "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, opts)
	default:
		fetcher = collector.NewYahooFetcher(opts)
	}
	if !mock {
		if _, noop := rec.(*recorder.NoopRecorder); !noop {
			fetcher = collector.NewCachedFetcher(fetcher, rec)
		}
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	params := collector.Params{
		MACD: calculator.MACDParams{
			Fast:   cfg.Indicators.MACDFast,
			Slow:   cfg.Indicators.MACDSlow,
			Signal: cfg.Indicators.MACDSignal,
		},
		RSIWindow:      cfg.Indicators.RSIWindow,
		MovingAverages: cfg.Indicators.MovingAverages,
	}
	return &app{cfg: cfg, recorder: rec, collector: collector.NewCollector(fetcher, params)}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
