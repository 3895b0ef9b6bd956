package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/model"
	"StockChartViewer/internal/notifier"
	"StockChartViewer/internal/prompt"
	"StockChartViewer/internal/renderer"
	"StockChartViewer/internal/scheduler"
	"StockChartViewer/internal/strategy"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "render a chart PNG for one symbol",
	Long:  "Renders a chart for --symbol; without --symbol the symbol and dates are asked interactively.",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	addChartFlags(chartCmd.Flags())
}

func addChartFlags(fs *pflag.FlagSet) {
	fs.String("symbol", "", "ticker symbol, e.g. AAPL")
	fs.String("start", "", "start date (YYYY-MM-DD or MM/DD/YY), default 2024-03-01")
	fs.String("end", "", "end date, inclusive (YYYY-MM-DD or MM/DD/YY), default today")
	fs.String("interval", collector.IntervalDaily, "bar interval: 1d or 1wk")
	fs.String("out", "", "output PNG path, default <chart.output_dir>/<SYMBOL>_<END>.png")
	fs.Int("table", 0, "print the last N rows of bars and indicators")
}

// requestFromFlags builds a request from flags, prompting on stdin when no symbol was given.
func requestFromFlags(fs *pflag.FlagSet) (collector.Request, error) {
	symbol, _ := fs.GetString("symbol")
	startStr, _ := fs.GetString("start")
	endStr, _ := fs.GetString("end")
	interval, _ := fs.GetString("interval")

	req := collector.Request{Interval: interval}
	if symbol == "" {
		in, err := prompt.New(os.Stdin, os.Stdout).Ask()
		if err != nil {
			return req, err
		}
		req.Symbol, req.Start, req.End = in.Symbol, in.Start, in.End
		return req, nil
	}

	req.Symbol = symbol
	req.Start = prompt.DefaultStart
	req.End = model.DateOf(time.Now())
	var err error
	if startStr != "" {
		if req.Start, err = prompt.ParseDate(startStr); err != nil {
			return req, err
		}
	}
	if endStr != "" {
		if req.End, err = prompt.ParseDate(endStr); err != nil {
			return req, err
		}
	}
	return req, nil
}

func runChart(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := requestFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	analysis, err := a.collector.Collect(ctx, req)
	if err != nil {
		return fmt.Errorf("no chart for %s: %w", req.Symbol, err)
	}
	res := &scheduler.Result{Analysis: analysis, Summary: strategy.Evaluate(analysis, a.thresholds())}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(a.cfg.Chart.OutputDir, scheduler.ChartFileName(analysis.Series.Symbol, req.End))
	}
	if err := renderer.SaveFile(out, analysis, a.chartOptions()); err != nil {
		return err
	}
	res.Path = out
	log.Info().Str("symbol", analysis.Series.Symbol).Str("path", out).Msg("chart saved")

	if err := a.recorder.RecordChart(scheduler.NewChartEvent(req, a.collector.Fetcher.Name(), res)); err != nil {
		log.Error().Err(err).Msg("record chart")
	}

	w := cmd.OutOrStdout()
	notifier.PrintSummary(w, res.Summary)
	if rows, _ := cmd.Flags().GetInt("table"); rows > 0 {
		notifier.PrintTable(w, analysis, rows)
	}
	fmt.Fprintln(w, out)
	return nil
}
