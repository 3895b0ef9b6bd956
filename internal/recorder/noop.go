package recorder

import (
	"time"

	"StockChartViewer/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) CoversRange(_ string, _, _ time.Time) (bool, error) { return false, nil }
func (n *NoopRecorder) LoadBars(_ string, _, _ time.Time) ([]model.PriceBar, error) {
	return nil, nil
}
func (n *NoopRecorder) SaveBars(_ string, _, _ time.Time, _ []model.PriceBar) error { return nil }
func (n *NoopRecorder) RecordChart(_ *ChartEvent) error                             { return nil }
func (n *NoopRecorder) RecentCharts(_ int) ([]ChartEvent, error)                    { return nil, nil }
func (n *NoopRecorder) Close() error                                                { return nil }
