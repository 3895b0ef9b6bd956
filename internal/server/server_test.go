package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/recorder"
	"StockChartViewer/internal/renderer"
	"StockChartViewer/internal/strategy"
)

func init() { gin.SetMode(gin.TestMode) }

type memoryRecorder struct {
	recorder.NoopRecorder
	events []recorder.ChartEvent
}

func (m *memoryRecorder) RecordChart(evt *recorder.ChartEvent) error {
	m.events = append(m.events, *evt)
	return nil
}

func (m *memoryRecorder) RecentCharts(int) ([]recorder.ChartEvent, error) { return m.events, nil }

func newTestServer(fetcher collector.Fetcher) (*Server, *memoryRecorder) {
	rec := &memoryRecorder{}
	s := New(collector.NewCollector(fetcher, collector.DefaultParams), rec,
		renderer.Options{Width: 600, Height: 400}, strategy.DefaultThresholds)
	s.Now = func() time.Time { return time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC) }
	return s, rec
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(&collector.MockFetcher{})
	w := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","source":"mock"}`, w.Body.String())
}

func TestChartPNG(t *testing.T) {
	s, rec := newTestServer(&collector.MockFetcher{Price: 120})
	w := get(s, "/chart.png?symbol=aapl&start=2024-03-01&end=2024-05-31")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", w.Body.String()[:4])

	require.Len(t, rec.events, 1)
	assert.Equal(t, "AAPL", rec.events[0].Symbol)
	assert.Equal(t, "1d", rec.events[0].Interval)
}

func TestChartPNG_BadInput(t *testing.T) {
	s, _ := newTestServer(&collector.MockFetcher{Price: 120})
	for _, target := range []string{
		"/chart.png",
		"/chart.png?symbol=AAPL&start=soon",
		"/chart.png?symbol=AAPL&start=2024-05-01&end=2024-04-01",
		"/chart.png?symbol=AAPL&interval=1h",
	} {
		w := get(s, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestChartPNG_FetchFailure(t *testing.T) {
	fetcher := &collector.MockFetcher{Err: collector.ErrSymbolNotFound}
	s, rec := newTestServer(fetcher)
	w := get(s, "/chart.png?symbol=NOPE")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "failed to fetch data for NOPE")
	assert.Empty(t, rec.events)
}

func TestAnalysisJSON(t *testing.T) {
	s, _ := newTestServer(&collector.MockFetcher{Price: 80})
	w := get(s, "/api/analysis?symbol=MSFT&start=03/01/24&end=03/29/24")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Symbol string `json:"symbol"`
		Bars   []struct {
			Date string `json:"date"`
		} `json:"bars"`
		RSI []struct {
			Value *float64 `json:"value"`
		} `json:"rsi"`
		MACD []struct {
			Value *float64 `json:"value"`
		} `json:"macd"`
		Summary struct {
			Bias string `json:"bias"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MSFT", resp.Symbol)
	require.Len(t, resp.Bars, 21)
	assert.Equal(t, "2024-03-01", resp.Bars[0].Date)
	assert.Equal(t, "2024-03-29", resp.Bars[20].Date)
	require.Len(t, resp.RSI, 21)
	assert.Nil(t, resp.RSI[12].Value)
	assert.NotNil(t, resp.RSI[13].Value)
	assert.NotNil(t, resp.MACD[0].Value)
	assert.NotEmpty(t, resp.Summary.Bias)
}

func TestAnalysisJSON_ConcurrentRequests(t *testing.T) {
	fetcher := &collector.MockFetcher{Price: 100}
	s, _ := newTestServer(fetcher)
	router := s.Router()

	const n = 4
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analysis?symbol=AAPL&start=2024-03-01&end=2024-03-29", nil))
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, int64(n), fetcher.Calls.Load())
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(&collector.MockFetcher{Price: 80})

	w := get(s, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="2024-03-01"`)
	assert.Contains(t, w.Body.String(), `value="2024-06-14"`)
	assert.NotContains(t, w.Body.String(), "<img")

	w = get(s, "/?symbol=tsla&start=2024-04-01&end=2024-05-01")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<img src="/chart.png?symbol=tsla&amp;start=2024-04-01&amp;end=2024-05-01"`)

	w = get(s, "/?symbol=tsla&end=garbage")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid date")
}

func TestHistory(t *testing.T) {
	s, _ := newTestServer(&collector.MockFetcher{Price: 80})
	get(s, "/chart.png?symbol=AAPL&start=2024-03-01&end=2024-03-29")
	w := get(s, "/api/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"symbol":"AAPL"`)
	assert.Contains(t, w.Body.String(), `"start":"2024-03-01"`)
}
