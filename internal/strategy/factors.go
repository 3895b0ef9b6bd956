package strategy

import (
	"fmt"
	"sort"

	"StockChartViewer/internal/model"
)

// detectCrossover compares the MACD/signal spread on the last two bars where
// both are defined.
func detectCrossover(macd, signal model.IndicatorSeries) model.Crossover {
	var spreads []float64
	for i := len(macd) - 1; i >= 0 && len(spreads) < 2; i-- {
		if i >= len(signal) || !macd[i].Value.Valid || !signal[i].Value.Valid {
			continue
		}
		spreads = append(spreads, macd[i].Value.Float64-signal[i].Value.Float64)
	}
	if len(spreads) < 2 {
		return model.CrossNone
	}
	cur, prev := spreads[0], spreads[1]
	switch {
	case prev <= 0 && cur > 0:
		return model.CrossBullish
	case prev >= 0 && cur < 0:
		return model.CrossBearish
	default:
		return model.CrossNone
	}
}

func classifyRSI(rsi model.Value, th Thresholds) model.RSIZone {
	switch {
	case !rsi.Valid:
		return model.ZoneUndefined
	case rsi.Float64 <= th.Oversold:
		return model.ZoneOversold
	case rsi.Float64 >= th.Overbought:
		return model.ZoneOverbought
	default:
		return model.ZoneNeutral
	}
}

// scoreMACD favours a fresh crossover over the histogram sign.
func scoreMACD(s *model.Summary) model.Reading {
	r := model.Reading{Name: "MACD"}
	switch {
	case s.Crossover == model.CrossBullish:
		r.Score, r.Commentary = 1.0, "bullish crossover"
	case s.Crossover == model.CrossBearish:
		r.Score, r.Commentary = -1.0, "bearish crossover"
	case s.Histogram.Valid && s.Histogram.Float64 > 0:
		r.Score, r.Commentary = 0.5, "above signal"
	case s.Histogram.Valid && s.Histogram.Float64 < 0:
		r.Score, r.Commentary = -0.5, "below signal"
	default:
		r.Commentary = "flat"
	}
	return r
}

// scoreRSI treats oversold as constructive and overbought as stretched.
func scoreRSI(s *model.Summary, th Thresholds) model.Reading {
	r := model.Reading{Name: "RSI"}
	if !s.RSI.Valid {
		r.Commentary = "n/a"
		return r
	}
	rsi := s.RSI.Float64
	mid := (th.Overbought + th.Oversold) / 2
	switch {
	case rsi <= th.Oversold:
		r.Score = 1.0
	case rsi >= th.Overbought:
		r.Score = -1.0
	case rsi < mid-10:
		r.Score = 0.5
	case rsi > mid+10:
		r.Score = -0.5
	}
	r.Commentary = fmt.Sprintf("RSI=%.1f", rsi)
	return r
}

// scoreTrend compares the last close with the longest configured moving
// average, or with the first close when none is configured.
func scoreTrend(a *model.Analysis, s *model.Summary) model.Reading {
	r := model.Reading{Name: "Trend"}

	ref := a.Series.Bars[0].Close
	label := "period open"
	if len(a.MovingAverages) > 0 {
		periods := make([]int, 0, len(a.MovingAverages))
		for p := range a.MovingAverages {
			periods = append(periods, p)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(periods)))
		for _, p := range periods {
			if last, ok := a.MovingAverages[p].Last(); ok {
				ref = last.Value.Float64
				label = fmt.Sprintf("MA%d", p)
				break
			}
		}
	}

	switch {
	case s.LastClose > ref:
		r.Score, r.Commentary = 0.5, "above "+label
	case s.LastClose < ref:
		r.Score, r.Commentary = -0.5, "below "+label
	default:
		r.Commentary = "at " + label
	}
	return r
}
