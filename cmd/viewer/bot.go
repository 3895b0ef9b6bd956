package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "answer /chart commands on Telegram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.cfg.ValidateTelegram(); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		sched, tn, err := newScheduler(ctx, a)
		if err != nil {
			return err
		}
		log.Info().Msg("telegram polling started")
		tn.StartPolling(ctx, sched.HandleCommand)
		return nil
	},
}
