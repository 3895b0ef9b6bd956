package calculator

import (
	"errors"

	"StockChartViewer/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return windowMean(prices, len(prices)-1, period), nil
}

// RollingSMA returns the trailing simple moving average of closes for every
// bar. Positions before the first full window are undefined.
func RollingSMA(series *model.PriceSeries, period int) model.IndicatorSeries {
	closes := series.Closes()
	out := make(model.IndicatorSeries, len(closes))
	for i, d := range series.Dates() {
		out[i].Date = d
		if period > 0 && i >= period-1 {
			out[i].Value = model.Some(windowMean(closes, i, period))
		}
	}
	return out
}
