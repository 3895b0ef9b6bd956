package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockChartViewer/internal/model"
)

type memoryStore struct {
	ranges [][2]time.Time
	bars   map[string][]model.PriceBar
}

func newMemoryStore() *memoryStore {
	return &memoryStore{bars: map[string][]model.PriceBar{}}
}

func (m *memoryStore) CoversRange(symbol string, start, end time.Time) (bool, error) {
	for _, r := range m.ranges {
		if !r[0].After(start) && !r[1].Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) LoadBars(symbol string, start, end time.Time) ([]model.PriceBar, error) {
	var out []model.PriceBar
	for _, b := range m.bars[symbol] {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveBars(symbol string, start, end time.Time, bars []model.PriceBar) error {
	m.ranges = append(m.ranges, [2]time.Time{start, end})
	m.bars[symbol] = append(m.bars[symbol], bars...)
	return nil
}

func TestCachedFetcher_HistoricalRangeIsCached(t *testing.T) {
	mock := &MockFetcher{Price: 100}
	store := newMemoryStore()
	f := NewCachedFetcher(mock, store)
	f.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	first, err := f.FetchDailyBars(context.Background(), "aapl", testStart, testEnd)
	require.NoError(t, err)
	second, err := f.FetchDailyBars(context.Background(), "AAPL", testStart, testEnd)
	require.NoError(t, err)

	assert.Equal(t, int64(1), mock.Calls.Load())
	assert.Equal(t, first.Bars, second.Bars)
	assert.Equal(t, "mock+cache", f.Name())
}

func TestCachedFetcher_OpenRangeBypassesCache(t *testing.T) {
	mock := &MockFetcher{Price: 100}
	f := NewCachedFetcher(mock, newMemoryStore())
	f.Now = func() time.Time { return testEnd }

	for i := 0; i < 2; i++ {
		_, err := f.FetchDailyBars(context.Background(), "AAPL", testStart, testEnd)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), mock.Calls.Load())
}
