package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/model"
	"StockChartViewer/internal/recorder"
	"StockChartViewer/internal/renderer"
)

type fakeNotifier struct {
	texts  []string
	charts [][]byte
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeNotifier) SendChartWithRetry(_ context.Context, png []byte, _ string, _ int) error {
	f.charts = append(f.charts, png)
	return nil
}

type memoryRecorder struct {
	recorder.NoopRecorder
	events []recorder.ChartEvent
}

func (m *memoryRecorder) RecordChart(evt *recorder.ChartEvent) error {
	m.events = append(m.events, *evt)
	return nil
}

func (m *memoryRecorder) RecentCharts(limit int) ([]recorder.ChartEvent, error) {
	if limit < len(m.events) {
		return m.events[:limit], nil
	}
	return m.events, nil
}

var fixedNow = time.Date(2024, 6, 14, 21, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, fetcher collector.Fetcher) (*Scheduler, *fakeNotifier, *memoryRecorder) {
	t.Helper()
	n := &fakeNotifier{}
	rec := &memoryRecorder{}
	col := collector.NewCollector(fetcher, collector.DefaultParams)
	s := NewScheduler(context.Background(), col, n, rec, Options{
		Symbols:      []string{"AAPL", "MSFT"},
		LookbackDays: 90,
		OutputDir:    t.TempDir(),
		Chart:        renderer.Options{Width: 600, Height: 400},
	})
	s.Now = func() time.Time { return fixedNow }
	return s, n, rec
}

func TestRunNow_RendersAndNotifies(t *testing.T) {
	s, n, rec := newTestScheduler(t, &collector.MockFetcher{Price: 150})

	require.NoError(t, s.RunNow(context.Background()))

	assert.Len(t, n.charts, 2)
	assert.Len(t, n.texts, 2)
	assert.Contains(t, n.texts[0], "AAPL Stock Analysis")
	require.Len(t, rec.events, 2)
	evt := rec.events[1]
	assert.Equal(t, "MSFT", evt.Symbol)
	assert.Equal(t, "mock", evt.Source)
	assert.Equal(t, "1d", evt.Interval)
	assert.True(t, model.DateOf(fixedNow).Equal(evt.End))
	assert.True(t, evt.LastRSI.Valid)

	path := filepath.Join(s.Options.OutputDir, "MSFT_20240614.png")
	assert.Equal(t, path, evt.OutputPath)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestRunNow_FetchFailure(t *testing.T) {
	s, n, rec := newTestScheduler(t, &collector.MockFetcher{Err: collector.ErrSymbolNotFound})

	err := s.RunNow(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, collector.ErrSymbolNotFound))
	assert.Empty(t, n.charts)
	require.Len(t, n.texts, 2)
	assert.Contains(t, n.texts[0], "❌ AAPL")
	assert.Empty(t, rec.events)
}

func TestRunNow_WithoutNotifier(t *testing.T) {
	s, _, rec := newTestScheduler(t, &collector.MockFetcher{Price: 10})
	s.Notifier = nil
	require.NoError(t, s.RunNow(context.Background()))
	assert.Len(t, rec.events, 2)
}

func TestRegister_InvalidSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{})
	assert.Error(t, s.Register("every tuesday"))
	assert.NoError(t, s.Register("0 30 16 * * 1-5"))
}

func TestHandleCommand_Chart(t *testing.T) {
	fetcher := &collector.MockFetcher{Price: 50}
	s, _, rec := newTestScheduler(t, fetcher)

	reply := s.HandleCommand(context.Background(), "/chart@ViewerBot tsla 2024-03-01 04/30/24")
	require.NotEmpty(t, reply.Chart)
	assert.Contains(t, reply.Text, "<b>TSLA</b> 2024-03-01 → 2024-04-30")
	require.Len(t, rec.events, 1)
	assert.Empty(t, rec.events[0].OutputPath)
}

func TestHandleCommand_Errors(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{Price: 50})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/chart").Text, "Usage")
	assert.Contains(t, s.HandleCommand(ctx, "/chart AAPL yesterday").Text, "invalid date")
	reply := s.HandleCommand(ctx, "/chart AAPL 2024-05-01 2024-04-01")
	assert.Empty(t, reply.Chart)
	assert.Contains(t, reply.Text, "before start date")
}

func TestHandleCommand_HistoryAndHelp(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{Price: 50})
	ctx := context.Background()

	assert.Equal(t, "No charts rendered yet.", s.HandleCommand(ctx, "/history").Text)
	s.HandleCommand(ctx, "/chart AAPL")
	assert.Contains(t, s.HandleCommand(ctx, "/history").Text, "AAPL")
	assert.Contains(t, s.HandleCommand(ctx, "hello").Text, "/chart SYMBOL")
	assert.Contains(t, s.HandleCommand(ctx, "").Text, "/help")
}
