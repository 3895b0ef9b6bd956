package main

import (
	"github.com/spf13/cobra"

	"StockChartViewer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the chart form over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.cfg.Server.Addr
		}
		ctx, cancel := signalContext()
		defer cancel()

		srv := server.New(a.collector, a.recorder, a.chartOptions(), a.thresholds())
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides server.addr")
}
