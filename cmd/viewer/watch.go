package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockChartViewer/internal/notifier"
	"StockChartViewer/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "render the watchlist on a cron schedule and send it to Telegram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.cfg.ValidateWatch(); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		sched, tn, err := newScheduler(ctx, a)
		if err != nil {
			return err
		}
		if err := sched.Register(a.cfg.Watch.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
		}
		if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
			go func() {
				if err := sched.RunNow(ctx); err != nil {
					log.Error().Err(err).Msg("initial watchlist run")
				}
			}()
		}

		log.Info().Str("cron", a.cfg.Watch.Cron).Strs("symbols", a.cfg.Watch.Symbols).Msg("watching. Press Ctrl+C to stop.")
		<-ctx.Done()
		log.Info().Msg("shutdown signal received, stopping...")
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("run-now", false, "render the watchlist once at startup")
}

// newScheduler wires the scheduler with Telegram when it is configured.
func newScheduler(ctx context.Context, a *app) (*scheduler.Scheduler, *notifier.TelegramNotifier, error) {
	var (
		tn *notifier.TelegramNotifier
		n  scheduler.Notifier
	)
	if a.cfg.TelegramEnabled() {
		var err error
		tn, err = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
		if err != nil {
			return nil, nil, err
		}
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, charts are only saved to disk")
	}

	sched := scheduler.NewScheduler(ctx, a.collector, n, a.recorder, scheduler.Options{
		Symbols:      a.cfg.Watch.Symbols,
		LookbackDays: a.cfg.Watch.LookbackDays,
		Interval:     a.cfg.Watch.Interval,
		OutputDir:    a.cfg.Chart.OutputDir,
		Chart:        a.chartOptions(),
		Thresholds:   a.thresholds(),
	})
	return sched, tn, nil
}
