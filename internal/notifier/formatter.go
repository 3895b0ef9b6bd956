package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockChartViewer/internal/model"
	"StockChartViewer/internal/recorder"
)

// HelpText lists the bot commands.
const HelpText = "Available commands:\n" +
	"• /chart SYMBOL [START] [END] - render a chart (dates as YYYY-MM-DD or MM/DD/YY)\n" +
	"• /history - recently rendered charts\n" +
	"• /help - this message"

func formatValue(v model.Value, layout string) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf(layout, v.Float64)
}

// FormatSummary formats a chart summary as a Telegram HTML message.
func FormatSummary(s *model.Summary) string {
	if s == nil {
		return "no data"
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s Stock Analysis</b> | %s → %s\n\n",
		html.EscapeString(s.Symbol), s.From.Format(time.DateOnly), s.AsOf.Format(time.DateOnly)))

	b.WriteString(fmt.Sprintf("Close: %.2f (%+.2f%% over %d bars)\n", s.LastClose, s.ChangePct, s.Bars))
	b.WriteString(fmt.Sprintf("Range: %.2f - %.2f (position %.0f%%)\n\n", s.PeriodLow, s.PeriodHigh, s.RangePosition*100))

	b.WriteString(fmt.Sprintf("MACD: %s | Signal: %s | Hist: %s\n",
		formatValue(s.MACD, "%.3f"), formatValue(s.Signal, "%.3f"), formatValue(s.Histogram, "%+.3f")))
	if s.Crossover != model.CrossNone && s.Crossover != "" {
		b.WriteString(fmt.Sprintf("Crossover: %s\n", s.Crossover))
	}
	b.WriteString(fmt.Sprintf("RSI: %s (%s)\n\n", formatValue(s.RSI, "%.1f"), s.RSIZone))

	b.WriteString("📈 <b>Readings:</b>\n")
	for _, r := range s.Readings {
		b.WriteString(fmt.Sprintf("  %s: %+.1f (%s)\n", r.Name, r.Score, html.EscapeString(r.Commentary)))
	}
	b.WriteString(fmt.Sprintf("Bias: <b>%s</b> (score %+.1f)\n", s.Bias, s.Score))

	if s.WarningMsg != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", s.WarningMsg))
	}
	return b.String()
}

// FormatCaption is a short photo caption; Telegram limits captions to 1024 characters.
func FormatCaption(s *model.Summary) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("<b>%s</b> %s → %s\nClose %.2f | RSI %s | %s",
		html.EscapeString(s.Symbol), s.From.Format(time.DateOnly), s.AsOf.Format(time.DateOnly),
		s.LastClose, formatValue(s.RSI, "%.1f"), s.Bias)
}

// FormatHistory lists recorded chart events, newest first.
func FormatHistory(events []recorder.ChartEvent) string {
	if len(events) == 0 {
		return "No charts rendered yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent charts</b>\n\n")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("%s %s %s→%s close %.2f RSI %s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), html.EscapeString(e.Symbol),
			e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly),
			e.LastClose, formatValue(e.LastRSI, "%.1f"), e.Bias))
	}
	return b.String()
}

// FormatError reports a failed chart request.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("❌ %s: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}
