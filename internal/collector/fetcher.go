package collector

import (
	"context"
	"errors"
	"time"

	"StockChartViewer/internal/model"
)

var (
	// ErrNoData is returned when a provider answers with zero bars.
	ErrNoData = errors.New("no price data returned")
	// ErrSymbolNotFound is returned when the provider does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Fetcher defines the interface for fetching market data.
// start and end are inclusive calendar dates.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
	Name() string
}
