package collector

import (
	"fmt"
	"sort"

	"StockChartViewer/internal/model"
)

// Supported bar intervals.
const (
	IntervalDaily  = "1d"
	IntervalWeekly = "1wk"
)

// normalizeBars sorts bars chronologically and keeps the last bar seen for
// each date.
func normalizeBars(bars []model.PriceBar) []model.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// Resample converts a daily series to the requested interval.
func Resample(series *model.PriceSeries, interval string) (*model.PriceSeries, error) {
	switch interval {
	case "", IntervalDaily:
		return series, nil
	case IntervalWeekly:
		return &model.PriceSeries{
			Symbol:    series.Symbol,
			Bars:      aggregateDailyToWeekly(series.Bars),
			FetchedAt: series.FetchedAt,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
}

// aggregateDailyToWeekly converts daily bars into ISO-week bars dated by the
// first trading day of each week.
func aggregateDailyToWeekly(daily []model.PriceBar) []model.PriceBar {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.PriceBar
	week := daily[0]
	wy, ww := week.Date.ISOWeek()

	for _, d := range daily[1:] {
		y, w := d.Date.ISOWeek()
		if y != wy || w != ww {
			weekly = append(weekly, week)
			week = d
			wy, ww = y, w
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
