package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"StockChartViewer/internal/model"
)

// BarStore persists fetched bars together with the date ranges they cover.
type BarStore interface {
	CoversRange(symbol string, start, end time.Time) (bool, error)
	LoadBars(symbol string, start, end time.Time) ([]model.PriceBar, error)
	SaveBars(symbol string, start, end time.Time, bars []model.PriceBar) error
}

// CachedFetcher serves fully historical ranges from a BarStore and falls
// back to the wrapped Fetcher otherwise.
type CachedFetcher struct {
	Fetcher Fetcher
	Store   BarStore
	Now     func() time.Time
}

// NewCachedFetcher wraps fetcher with store.
func NewCachedFetcher(fetcher Fetcher, store BarStore) *CachedFetcher {
	return &CachedFetcher{Fetcher: fetcher, Store: store, Now: time.Now}
}

func (f *CachedFetcher) Name() string { return f.Fetcher.Name() + "+cache" }

func (f *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	logger := log.With().Str("component", "cache").Str("symbol", symbol).Logger()
	start, end = model.DateOf(start), model.DateOf(end)
	// Today's bar is still moving.
	historical := end.Before(model.DateOf(f.Now()))

	if historical {
		covered, err := f.Store.CoversRange(symbol, start, end)
		if err != nil {
			logger.Warn().Err(err).Msg("cache lookup failed")
		} else if covered {
			bars, err := f.Store.LoadBars(symbol, start, end)
			if err == nil && len(bars) > 0 {
				logger.Debug().Int("bars", len(bars)).Msg("cache hit")
				return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: f.Now()}, nil
			}
			if err != nil {
				logger.Warn().Err(err).Msg("cache load failed")
			}
		}
	}

	series, err := f.Fetcher.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if historical {
		if err := f.Store.SaveBars(symbol, start, end, series.Bars); err != nil {
			logger.Warn().Err(fmt.Errorf("save bars: %w", err)).Msg("cache write failed")
		}
	}
	return series, nil
}
