package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"StockChartViewer/internal/calculator"
	"StockChartViewer/internal/model"
)

// MockFetcher returns controllable synthetic data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.PriceBar
	Err   error
	Calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, model.DateOf(start), model.DateOf(end))
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	return &model.PriceSeries{Symbol: strings.ToUpper(symbol), Bars: bars, FetchedAt: time.Now()}, nil
}

// generateMockBars emits one bar per weekday in [start, end].
func generateMockBars(basePrice float64, start, end time.Time) []model.PriceBar {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.PriceBar
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/6) + float64(i)*0.001)
		bars = append(bars, model.PriceBar{
			Date:   d,
			Open:   p * 0.998,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 1000000 + int64(i%7)*50000,
		})
		i++
	}
	return bars
}

// Request describes one chart request.
type Request struct {
	Symbol   string
	Start    time.Time
	End      time.Time
	Interval string
}

// Validate checks the request before any network call is made.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return errors.New("symbol is required")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("start and end dates are required")
	}
	if model.DateOf(r.End).Before(model.DateOf(r.Start)) {
		return fmt.Errorf("end date %s is before start date %s",
			r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly))
	}
	switch r.Interval {
	case "", IntervalDaily, IntervalWeekly:
	default:
		return fmt.Errorf("unsupported interval %q", r.Interval)
	}
	return nil
}

// Params controls indicator computation.
type Params struct {
	MACD           calculator.MACDParams
	RSIWindow      int
	MovingAverages []int
}

// DefaultParams mirrors the classic chart: MACD 12/26/9 and RSI 14.
var DefaultParams = Params{MACD: calculator.DefaultMACDParams, RSIWindow: calculator.DefaultRSIWindow}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Params  Params
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params Params) *Collector {
	if params.MACD == (calculator.MACDParams{}) {
		params.MACD = calculator.DefaultMACDParams
	}
	if params.RSIWindow == 0 {
		params.RSIWindow = calculator.DefaultRSIWindow
	}
	return &Collector{Fetcher: fetcher, Params: params}
}

// Collect fetches the requested series and computes all indicators. A fetch
// failure is returned as an error and no analysis is produced.
func (c *Collector) Collect(ctx context.Context, req Request) (*model.Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := log.With().Str("component", "collector").Str("symbol", req.Symbol).Logger()

	series, err := c.Fetcher.FetchDailyBars(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("fetch daily bars: %w", ErrNoData)
	}
	series, err = Resample(series, req.Interval)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("bars", series.Len()).Str("source", c.Fetcher.Name()).Msg("series fetched")

	return c.Analyze(series), nil
}

// Analyze runs the indicator engine over an already fetched series.
func (c *Collector) Analyze(series *model.PriceSeries) *model.Analysis {
	macd, signal := calculator.CalculateMACDWithParams(series, c.Params.MACD)
	a := &model.Analysis{
		Series:    *series,
		MACD:      macd,
		Signal:    signal,
		Histogram: calculator.Histogram(macd, signal),
		RSI:       calculator.CalculateRSI(series, c.Params.RSIWindow),
		RSIWindow: c.Params.RSIWindow,
	}
	if len(c.Params.MovingAverages) > 0 {
		a.MovingAverages = make(map[int]model.IndicatorSeries, len(c.Params.MovingAverages))
		for _, p := range c.Params.MovingAverages {
			a.MovingAverages[p] = calculator.RollingSMA(series, p)
		}
	}
	return a
}
