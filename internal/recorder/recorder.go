package recorder

import (
	"time"

	"StockChartViewer/internal/model"
)

// ChartEvent records one rendered chart.
type ChartEvent struct {
	Symbol     string
	Start      time.Time
	End        time.Time
	Interval   string
	Bars       int
	Source     string
	OutputPath string
	LastClose  float64
	LastMACD   model.Value
	LastSignal model.Value
	LastRSI    model.Value
	Bias       string
	CreatedAt  time.Time
}

// Recorder caches fetched bars and persists chart history.
type Recorder interface {
	CoversRange(symbol string, start, end time.Time) (bool, error)
	LoadBars(symbol string, start, end time.Time) ([]model.PriceBar, error)
	SaveBars(symbol string, start, end time.Time, bars []model.PriceBar) error
	RecordChart(evt *ChartEvent) error
	RecentCharts(limit int) ([]ChartEvent, error)
	Close() error
}
