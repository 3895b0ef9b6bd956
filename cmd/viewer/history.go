package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list recently rendered charts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := a.recorder.RecentCharts(limit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Rendered", "Symbol", "Range", "Interval", "Bars", "Close", "RSI", "Bias", "File"})
		for _, e := range events {
			rsi := "-"
			if e.LastRSI.Valid {
				rsi = fmt.Sprintf("%.1f", e.LastRSI.Float64)
			}
			t.AppendRow(table.Row{
				e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Symbol,
				e.Start.Format(time.DateOnly) + " → " + e.End.Format(time.DateOnly),
				e.Interval, e.Bars, fmt.Sprintf("%.2f", e.LastClose), rsi, e.Bias, e.OutputPath,
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of charts to list")
}
