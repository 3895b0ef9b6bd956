package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockChartViewer/internal/model"
)

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
)

func TestCollector_Collect(t *testing.T) {
	col := NewCollector(&MockFetcher{Price: 150}, Params{MovingAverages: []int{5, 20}})
	a, err := col.Collect(context.Background(), Request{Symbol: "AAPL", Start: testStart, End: testEnd})
	require.NoError(t, err)

	n := a.Series.Len()
	require.Greater(t, n, 40)
	assert.Len(t, a.MACD, n)
	assert.Len(t, a.Signal, n)
	assert.Len(t, a.Histogram, n)
	assert.Len(t, a.RSI, n)
	assert.Equal(t, 14, a.RSIWindow)
	assert.Len(t, a.MovingAverages[20], n)
	assert.False(t, a.RSI[12].Value.Valid)
	assert.True(t, a.RSI[13].Value.Valid)
}

func TestCollector_FetchFailureProducesNoAnalysis(t *testing.T) {
	fetchErr := errors.New("connection refused")
	col := NewCollector(&MockFetcher{Err: fetchErr}, DefaultParams)
	a, err := col.Collect(context.Background(), Request{Symbol: "AAPL", Start: testStart, End: testEnd})
	assert.Nil(t, a)
	assert.ErrorIs(t, err, fetchErr)
}

func TestCollector_EmptySeries(t *testing.T) {
	col := NewCollector(&MockFetcher{Bars: []model.PriceBar{}}, DefaultParams)
	_, err := col.Collect(context.Background(), Request{Symbol: "AAPL", Start: testStart, End: testEnd})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"ok", Request{Symbol: "AAPL", Start: testStart, End: testEnd}, false},
		{"same day", Request{Symbol: "AAPL", Start: testStart, End: testStart}, false},
		{"weekly", Request{Symbol: "AAPL", Start: testStart, End: testEnd, Interval: IntervalWeekly}, false},
		{"missing symbol", Request{Symbol: " ", Start: testStart, End: testEnd}, true},
		{"reversed", Request{Symbol: "AAPL", Start: testEnd, End: testStart}, true},
		{"zero dates", Request{Symbol: "AAPL"}, true},
		{"bad interval", Request{Symbol: "AAPL", Start: testStart, End: testEnd, Interval: "5m"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollector_Weekly(t *testing.T) {
	col := NewCollector(&MockFetcher{Price: 100}, DefaultParams)
	a, err := col.Collect(context.Background(), Request{Symbol: "AAPL", Start: testStart, End: testEnd, Interval: IntervalWeekly})
	require.NoError(t, err)
	assert.Equal(t, 13, a.Series.Len())
	for _, b := range a.Series.Bars {
		assert.Equal(t, time.Monday, b.Date.Weekday())
	}
}
