package strategy

import (
	"fmt"

	"StockChartViewer/internal/calculator"
	"StockChartViewer/internal/model"
)

// Thresholds holds the RSI zone boundaries.
type Thresholds struct {
	Overbought float64
	Oversold   float64
}

// DefaultThresholds are the classic 70/30 RSI levels.
var DefaultThresholds = Thresholds{Overbought: 70, Oversold: 30}

// biasCutoff maps the total score to a Bias.
const biasCutoff = 1.0

// Evaluate digests an analysis into a Summary. It returns nil for an empty analysis.
func Evaluate(a *model.Analysis, th Thresholds) *model.Summary {
	if a == nil || a.Series.Len() == 0 {
		return nil
	}
	if th.Overbought == 0 {
		th.Overbought = DefaultThresholds.Overbought
	}
	if th.Oversold == 0 {
		th.Oversold = DefaultThresholds.Oversold
	}

	first := a.Series.Bars[0]
	last, _ := a.Series.Last()
	s := &model.Summary{
		Symbol:    a.Series.Symbol,
		From:      first.Date,
		AsOf:      last.Date,
		Bars:      a.Series.Len(),
		LastClose: last.Close,
	}
	if first.Close != 0 {
		s.ChangePct = (last.Close - first.Close) / first.Close * 100
	}
	if high, low, err := calculator.PeriodRange(&a.Series); err == nil {
		s.PeriodHigh, s.PeriodLow = high, low
		s.RangePosition, _ = calculator.RangePosition(last.Close, high, low)
	}
	if p, ok := a.MACD.Last(); ok {
		s.MACD = p.Value
	}
	if p, ok := a.Signal.Last(); ok {
		s.Signal = p.Value
	}
	if p, ok := a.Histogram.Last(); ok {
		s.Histogram = p.Value
	}
	if p, ok := a.RSI.Last(); ok {
		s.RSI = p.Value
	}
	s.Crossover = detectCrossover(a.MACD, a.Signal)
	s.RSIZone = classifyRSI(s.RSI, th)

	s.Readings = []model.Reading{
		scoreMACD(s),
		scoreRSI(s, th),
		scoreTrend(a, s),
	}
	for _, r := range s.Readings {
		s.Score += r.Score
	}
	switch {
	case s.Score >= biasCutoff:
		s.Bias = model.BiasBullish
	case s.Score <= -biasCutoff:
		s.Bias = model.BiasBearish
	default:
		s.Bias = model.BiasNeutral
	}

	if s.RSI.Valid && (s.RSI.Float64 > 85 || s.RSI.Float64 < 15) {
		s.WarningMsg = fmt.Sprintf("⚠️ extreme RSI %.1f", s.RSI.Float64)
	}
	return s
}
