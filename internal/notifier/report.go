package notifier

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockChartViewer/internal/model"
)

func newTableStyle() table.Style {
	style := table.StyleRounded
	style.Format.Header = text.FormatUpper
	style.Options.SeparateRows = false
	return style
}

// PrintTable writes the last rows of bars and indicators as a table. rows <= 0 prints everything.
func PrintTable(w io.Writer, a *model.Analysis, rows int) {
	if a == nil || a.Series.Len() == 0 {
		fmt.Fprintln(w, "no data")
		return
	}
	n := a.Series.Len()
	from := 0
	if rows > 0 && rows < n {
		from = n - rows
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(newTableStyle())
	t.SetTitle(fmt.Sprintf("%s daily bars", a.Series.Symbol))
	t.AppendHeader(table.Row{"Date", "Open", "High", "Low", "Close", "Volume", "MACD", "Signal", fmt.Sprintf("RSI(%d)", a.RSIWindow)})
	for i := from; i < n; i++ {
		bar := a.Series.Bars[i]
		t.AppendRow(table.Row{
			bar.Date.Format(time.DateOnly),
			fmt.Sprintf("%.2f", bar.Open),
			fmt.Sprintf("%.2f", bar.High),
			fmt.Sprintf("%.2f", bar.Low),
			fmt.Sprintf("%.2f", bar.Close),
			bar.Volume,
			cell(a.MACD, i, "%.3f"),
			cell(a.Signal, i, "%.3f"),
			cell(a.RSI, i, "%.1f"),
		})
	}
	configs := make([]table.ColumnConfig, 0, 8)
	for col := 2; col <= 9; col++ {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
	t.Render()
}

func cell(s model.IndicatorSeries, i int, layout string) string {
	if i >= len(s) {
		return "-"
	}
	if !s[i].Value.Valid {
		return "-"
	}
	return fmt.Sprintf(layout, s[i].Value.Float64)
}

// PrintSummary writes a colored digest of s for the terminal.
func PrintSummary(w io.Writer, s *model.Summary) {
	if s == nil {
		return
	}
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "%s %s → %s (%d bars)\n", s.Symbol, s.From.Format(time.DateOnly), s.AsOf.Format(time.DateOnly), s.Bars)

	changeColor := color.New(color.FgGreen)
	if s.ChangePct < 0 {
		changeColor = color.New(color.FgRed)
	}
	fmt.Fprintf(w, "Close %.2f ", s.LastClose)
	changeColor.Fprintf(w, "%+.2f%%\n", s.ChangePct)
	fmt.Fprintf(w, "Range %.2f - %.2f\n", s.PeriodLow, s.PeriodHigh)
	fmt.Fprintf(w, "MACD %s  Signal %s  Hist %s\n",
		formatValue(s.MACD, "%.3f"), formatValue(s.Signal, "%.3f"), formatValue(s.Histogram, "%+.3f"))

	zoneColor := color.New(color.FgWhite)
	switch s.RSIZone {
	case model.ZoneOverbought:
		zoneColor = color.New(color.FgRed)
	case model.ZoneOversold:
		zoneColor = color.New(color.FgGreen)
	}
	fmt.Fprintf(w, "RSI %s ", formatValue(s.RSI, "%.1f"))
	zoneColor.Fprintf(w, "%s\n", s.RSIZone)

	biasColor := color.New(color.FgYellow, color.Bold)
	switch s.Bias {
	case model.BiasBullish:
		biasColor = color.New(color.FgGreen, color.Bold)
	case model.BiasBearish:
		biasColor = color.New(color.FgRed, color.Bold)
	}
	biasColor.Fprintf(w, "%s (score %+.1f)\n", s.Bias, s.Score)
	if s.WarningMsg != "" {
		color.New(color.FgHiRed).Fprintln(w, s.WarningMsg)
	}
}
