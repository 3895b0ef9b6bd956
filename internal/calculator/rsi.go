package calculator

import "StockChartViewer/internal/model"

// DefaultRSIWindow is the look-back used when none is configured.
const DefaultRSIWindow = 14

// CalculateRSI computes the RSI of close prices using simple rolling means of
// gains and losses over window samples.
//
// The first bar has no change; it counts as zero gain and zero loss, so the
// first defined value sits at index window-1. A window with no losses yields
// 100, a window with neither gains nor losses stays undefined.
func CalculateRSI(series *model.PriceSeries, window int) model.IndicatorSeries {
	n := series.Len()
	out := make(model.IndicatorSeries, n)
	for i, d := range series.Dates() {
		out[i].Date = d
	}
	if window < 1 || n < 2 || n < window {
		return out
	}

	closes := series.Closes()
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	for i := window - 1; i < n; i++ {
		avgGain := windowMean(gains, i, window)
		avgLoss := windowMean(losses, i, window)
		out[i].Value = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) model.Value {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return model.None()
	case avgLoss == 0:
		return model.Some(100)
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if rsi < 0 {
		rsi = 0
	} else if rsi > 100 {
		rsi = 100
	}
	return model.Some(rsi)
}

// windowMean averages values[end-window+1 .. end].
func windowMean(values []float64, end, window int) float64 {
	sum := 0.0
	for i := end - window + 1; i <= end; i++ {
		sum += values[i]
	}
	return sum / float64(window)
}
