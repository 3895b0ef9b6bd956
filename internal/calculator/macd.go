package calculator

import (
	"time"

	"StockChartViewer/internal/model"
)

// MACDParams holds the EMA spans used by CalculateMACDWithParams.
type MACDParams struct {
	Fast   int
	Slow   int
	Signal int
}

// DefaultMACDParams is the classic 12/26/9 configuration.
var DefaultMACDParams = MACDParams{Fast: 12, Slow: 26, Signal: 9}

// CalculateMACD returns the MACD line (EMA12 - EMA26 of closes) and its
// 9-period signal line. Both are defined from the first bar onward.
func CalculateMACD(series *model.PriceSeries) (macd, signal model.IndicatorSeries) {
	return CalculateMACDWithParams(series, DefaultMACDParams)
}

// CalculateMACDWithParams is CalculateMACD with explicit spans.
func CalculateMACDWithParams(series *model.PriceSeries, p MACDParams) (macd, signal model.IndicatorSeries) {
	closes := series.Closes()
	dates := series.Dates()

	fast := EWM(closes, p.Fast)
	slow := EWM(closes, p.Slow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	sig := EWM(line, p.Signal)

	return definedSeries(dates, line), definedSeries(dates, sig)
}

// Histogram returns macd - signal wherever both are defined.
func Histogram(macd, signal model.IndicatorSeries) model.IndicatorSeries {
	out := make(model.IndicatorSeries, len(macd))
	for i, p := range macd {
		out[i].Date = p.Date
		if i < len(signal) && p.Value.Valid && signal[i].Value.Valid {
			out[i].Value = model.Some(p.Value.Float64 - signal[i].Value.Float64)
		}
	}
	return out
}

func definedSeries(dates []time.Time, values []float64) model.IndicatorSeries {
	out := make(model.IndicatorSeries, len(values))
	for i, v := range values {
		out[i] = model.Point{Date: dates[i], Value: model.Some(v)}
	}
	return out
}
