// Package server exposes the chart form and chart images over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/model"
	"StockChartViewer/internal/prompt"
	"StockChartViewer/internal/recorder"
	"StockChartViewer/internal/renderer"
	"StockChartViewer/internal/strategy"
)

var errBadRequest = errors.New("bad request")

// Server serves the chart form, PNG charts and analysis JSON.
type Server struct {
	Collector  *collector.Collector
	Recorder   recorder.Recorder
	Chart      renderer.Options
	Thresholds strategy.Thresholds
	Now        func() time.Time

	log zerolog.Logger
}

func New(col *collector.Collector, rec recorder.Recorder, chartOpts renderer.Options, th strategy.Thresholds) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Server{
		Collector:  col,
		Recorder:   rec,
		Chart:      chartOpts,
		Thresholds: th,
		Now:        time.Now,
		log:        log.With().Str("component", "server").Logger(),
	}
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))

	r.GET("/", s.handleIndex)
	r.GET("/chart.png", s.handleChart)
	r.GET("/api/analysis", s.handleAnalysis)
	r.GET("/api/history", s.handleHistory)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "source": s.Collector.Fetcher.Name()})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// parseRequest reads symbol, start, end and interval from the query string.
func (s *Server) parseRequest(c *gin.Context) (collector.Request, error) {
	req := collector.Request{
		Symbol:   strings.ToUpper(strings.TrimSpace(c.Query("symbol"))),
		Start:    prompt.DefaultStart,
		End:      model.DateOf(s.Now()),
		Interval: c.Query("interval"),
	}
	if v := c.Query("start"); v != "" {
		d, err := prompt.ParseDate(v)
		if err != nil {
			return req, fmt.Errorf("%w: start: %v", errBadRequest, err)
		}
		req.Start = d
	}
	if v := c.Query("end"); v != "" {
		d, err := prompt.ParseDate(v)
		if err != nil {
			return req, fmt.Errorf("%w: end: %v", errBadRequest, err)
		}
		req.End = d
	}
	if err := req.Validate(); err != nil {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}

// analyze parses and collects; on failure it has already written the response.
func (s *Server) analyze(c *gin.Context) (collector.Request, *model.Analysis, bool) {
	req, err := s.parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, nil, false
	}
	a, err := s.Collector.Collect(c.Request.Context(), req)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("collect failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to fetch data for %s: %v", req.Symbol, err)})
		return req, nil, false
	}
	return req, a, true
}

func (s *Server) handleChart(c *gin.Context) {
	req, a, ok := s.analyze(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, a, s.Chart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sum := strategy.Evaluate(a, s.Thresholds)
	evt := &recorder.ChartEvent{
		Symbol: req.Symbol, Start: req.Start, End: req.End, Interval: req.Interval,
		Bars: a.Series.Len(), Source: s.Collector.Fetcher.Name(),
		LastClose: sum.LastClose, LastMACD: sum.MACD, LastSignal: sum.Signal, LastRSI: sum.RSI,
		Bias: string(sum.Bias),
	}
	if evt.Interval == "" {
		evt.Interval = collector.IntervalDaily
	}
	if err := s.Recorder.RecordChart(evt); err != nil {
		s.log.Error().Err(err).Msg("record chart")
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleAnalysis(c *gin.Context) {
	req, a, ok := s.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newAnalysisResponse(req, a, strategy.Evaluate(a, s.Thresholds)))
}

func (s *Server) handleHistory(c *gin.Context) {
	events, err := s.Recorder.RecentCharts(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]historyJSON, 0, len(events))
	for _, e := range events {
		out = append(out, historyJSON{
			Symbol: e.Symbol, Start: e.Start.Format(time.DateOnly), End: e.End.Format(time.DateOnly),
			Interval: e.Interval, Bars: e.Bars, Source: e.Source,
			LastClose: e.LastClose, LastRSI: e.LastRSI, Bias: e.Bias, CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type indexData struct {
	Symbol   string
	Start    string
	End      string
	Interval string
	Query    template.URL
	Error    string
}

func (s *Server) handleIndex(c *gin.Context) {
	data := indexData{
		Symbol:   c.Query("symbol"),
		Start:    prompt.DefaultStart.Format(time.DateOnly),
		End:      model.DateOf(s.Now()).Format(time.DateOnly),
		Interval: c.Query("interval"),
	}
	if data.Symbol == "" {
		c.HTML(http.StatusOK, "index", data)
		return
	}
	req, err := s.parseRequest(c)
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index", data)
		return
	}
	data.Symbol = req.Symbol
	data.Start = req.Start.Format(time.DateOnly)
	data.End = req.End.Format(time.DateOnly)
	data.Query = template.URL(c.Request.URL.RawQuery)
	c.HTML(http.StatusOK, "index", data)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Stock Chart Viewer</title></head>
<body>
<h1>Stock Chart Viewer</h1>
<form method="get" action="/">
  <label>Stock Symbol <input name="symbol" value="{{.Symbol}}" required></label>
  <label>Start Date <input type="date" name="start" value="{{.Start}}"></label>
  <label>End Date <input type="date" name="end" value="{{.End}}"></label>
  <select name="interval">
    <option value="1d"{{if ne .Interval "1wk"}} selected{{end}}>Daily</option>
    <option value="1wk"{{if eq .Interval "1wk"}} selected{{end}}>Weekly</option>
  </select>
  <button type="submit">Show Chart</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Query}}
<p><img src="/chart.png?{{.Query}}" alt="{{.Symbol}} Stock Analysis"></p>
<p><a href="/api/analysis?{{.Query}}">analysis JSON</a></p>
{{end}}
</body>
</html>
`
