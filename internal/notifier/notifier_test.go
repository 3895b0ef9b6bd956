package notifier

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"StockChartViewer/internal/model"
	"StockChartViewer/internal/recorder"
)

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func sampleSummary() *model.Summary {
	return &model.Summary{
		Symbol:        "AAPL",
		From:          day(1),
		AsOf:          day(28),
		Bars:          20,
		LastClose:     171.5,
		ChangePct:     -4.25,
		PeriodHigh:    180,
		PeriodLow:     168,
		RangePosition: 0.29,
		MACD:          model.Some(-1.234),
		Signal:        model.Some(-0.9),
		Histogram:     model.Some(-0.334),
		RSI:           model.Some(28.4),
		Crossover:     model.CrossBearish,
		RSIZone:       model.ZoneOversold,
		Readings: []model.Reading{
			{Name: "MACD", Score: -2, Commentary: "bearish cross"},
			{Name: "RSI", Score: 1, Commentary: "oversold <30"},
		},
		Score: -1,
		Bias:  model.BiasBearish,
	}
}

func sampleAnalysis() *model.Analysis {
	a := &model.Analysis{Series: model.PriceSeries{Symbol: "AAPL"}, RSIWindow: 14}
	for i := 1; i <= 5; i++ {
		a.Series.Bars = append(a.Series.Bars, model.PriceBar{
			Date: day(i), Open: 100, High: 101, Low: 99, Close: 100 + float64(i), Volume: int64(i) * 1000,
		})
		a.MACD = append(a.MACD, model.Point{Date: day(i), Value: model.Some(0.5)})
		a.Signal = append(a.Signal, model.Point{Date: day(i), Value: model.Some(0.25)})
		a.RSI = append(a.RSI, model.Point{Date: day(i), Value: model.None()})
	}
	return a
}

func TestFormatSummary(t *testing.T) {
	msg := FormatSummary(sampleSummary())
	assert.Contains(t, msg, "<b>AAPL Stock Analysis</b>")
	assert.Contains(t, msg, "2024-03-01 → 2024-03-28")
	assert.Contains(t, msg, "Close: 171.50 (-4.25% over 20 bars)")
	assert.Contains(t, msg, "MACD: -1.234")
	assert.Contains(t, msg, "Crossover: BEARISH_CROSS")
	assert.Contains(t, msg, "RSI: 28.4 (OVERSOLD)")
	assert.Contains(t, msg, "oversold &lt;30")
	assert.Contains(t, msg, "Bias: <b>BEARISH</b>")
}

func TestFormatSummary_HalfPointScores(t *testing.T) {
	s := sampleSummary()
	s.Readings = []model.Reading{
		{Name: "MACD", Score: 0.5, Commentary: "above signal"},
		{Name: "Trend", Score: -0.5, Commentary: "below MA"},
	}
	s.Score = 0.5
	msg := FormatSummary(s)
	assert.Contains(t, msg, "MACD: +0.5 (above signal)")
	assert.Contains(t, msg, "Trend: -0.5 (below MA)")
	assert.Contains(t, msg, "(score +0.5)")
}

func TestFormatSummary_UndefinedValues(t *testing.T) {
	s := sampleSummary()
	s.RSI = model.None()
	s.RSIZone = model.ZoneUndefined
	s.Crossover = model.CrossNone
	msg := FormatSummary(s)
	assert.Contains(t, msg, "RSI: n/a (UNDEFINED)")
	assert.NotContains(t, msg, "Crossover")
	assert.Equal(t, "no data", FormatSummary(nil))
}

func TestFormatCaption_Short(t *testing.T) {
	c := FormatCaption(sampleSummary())
	assert.Less(t, len(c), maxCaptionLen)
	assert.Contains(t, c, "RSI 28.4")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No charts rendered yet.", FormatHistory(nil))
	msg := FormatHistory([]recorder.ChartEvent{{
		Symbol: "MSFT", Start: day(1), End: day(8), LastClose: 410.2,
		LastRSI: model.Some(55), Bias: "NEUTRAL", CreatedAt: day(8).Add(17 * time.Hour),
	}})
	assert.Contains(t, msg, "2024-03-08 17:00 MSFT 2024-03-01→2024-03-08 close 410.20 RSI 55.0 NEUTRAL")
}

func TestFormatError_Escapes(t *testing.T) {
	assert.Equal(t, "❌ A&amp;B: bad &lt;input&gt;", FormatError("A&B", errors.New("bad <input>")))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleAnalysis(), 3)
	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "aapl daily bars")
	assert.Contains(t, out, "RSI(14)")
	assert.NotContains(t, out, "2024-03-02")
	assert.Contains(t, out, "2024-03-03")
	assert.Contains(t, out, "2024-03-05")
	assert.Contains(t, out, "105.00")
	assert.Contains(t, out, "0.500")
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, &model.Analysis{}, 10)
	assert.Equal(t, "no data\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	PrintSummary(&buf, sampleSummary())
	out := buf.String()
	assert.Contains(t, out, "AAPL 2024-03-01 → 2024-03-28 (20 bars)")
	assert.Contains(t, out, "Close 171.50 -4.25%")
	assert.Contains(t, out, "RSI 28.4 OVERSOLD")
	assert.Contains(t, out, "BEARISH (score -1.0)")
}

func TestFitCaption(t *testing.T) {
	short := "<b>AAPL</b> close 171.50"
	got, isHTML := fitCaption(short)
	assert.Equal(t, short, got)
	assert.True(t, isHTML)

	long := "<b>A&amp;B</b> " + strings.Repeat("→", maxCaptionLen)
	got, isHTML = fitCaption(long)
	assert.False(t, isHTML)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxCaptionLen, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "A&B →"))
	assert.NotContains(t, got, "<b>")
}
