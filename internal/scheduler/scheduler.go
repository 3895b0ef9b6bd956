package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/model"
	"StockChartViewer/internal/notifier"
	"StockChartViewer/internal/prompt"
	"StockChartViewer/internal/recorder"
	"StockChartViewer/internal/renderer"
	"StockChartViewer/internal/strategy"
)

const sendRetries = 3

// Notifier delivers reports. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendChartWithRetry(ctx context.Context, png []byte, caption string, maxRetries int) error
}

// Options configures the watchlist job and bot commands.
type Options struct {
	Symbols      []string
	LookbackDays int
	Interval     string
	OutputDir    string
	Chart        renderer.Options
	Thresholds   strategy.Thresholds
}

// Result is one rendered chart.
type Result struct {
	Analysis *model.Analysis
	Summary  *model.Summary
	PNG      []byte
	Path     string
}

// Scheduler manages the watchlist cron job and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Notifier // nil disables notifications
	Recorder  recorder.Recorder
	Options   Options
	Now       func() time.Time
	Ctx       context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, opts Options) *Scheduler {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 180
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Options:   opts,
		Now:       time.Now,
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Register schedules the watchlist job on a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.watchTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the watchlist job immediately.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.log.Info().Strs("symbols", s.Options.Symbols).Msg("running watchlist")
	var errs []error
	end := model.DateOf(s.Now())
	start := end.AddDate(0, 0, -s.Options.LookbackDays)
	for _, symbol := range s.Options.Symbols {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		req := collector.Request{Symbol: symbol, Start: start, End: end, Interval: s.Options.Interval}
		res, err := s.Chart(ctx, req, true)
		if err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Msg("watchlist chart failed")
			s.trySend(ctx, notifier.FormatError(symbol, err))
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		s.trySendChart(ctx, res.PNG, notifier.FormatCaption(res.Summary))
		s.trySend(ctx, notifier.FormatSummary(res.Summary))
	}
	return errors.Join(errs...)
}

func (s *Scheduler) watchTask() {
	if err := s.RunNow(s.Ctx); err != nil {
		s.log.Warn().Err(err).Msg("watchlist finished with errors")
	}
}

// Chart collects, evaluates and renders one request, records it in the
// history and, when save is set and an output directory is configured,
// writes the PNG to disk.
func (s *Scheduler) Chart(ctx context.Context, req collector.Request, save bool) (*Result, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	a, err := s.Collector.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	res := &Result{Analysis: a, Summary: strategy.Evaluate(a, s.Options.Thresholds)}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, a, s.Options.Chart); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	res.PNG = buf.Bytes()

	if save && s.Options.OutputDir != "" {
		res.Path = filepath.Join(s.Options.OutputDir, ChartFileName(req.Symbol, req.End))
		if err := os.MkdirAll(s.Options.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(res.Path, res.PNG, 0o644); err != nil {
			return nil, fmt.Errorf("write chart: %w", err)
		}
		s.log.Info().Str("symbol", req.Symbol).Str("path", res.Path).Msg("chart saved")
	}

	if err := s.Recorder.RecordChart(NewChartEvent(req, s.Collector.Fetcher.Name(), res)); err != nil {
		s.log.Error().Err(err).Msg("record chart")
	}
	return res, nil
}

// ChartFileName is the file a chart for symbol ending at end is saved under.
func ChartFileName(symbol string, end time.Time) string {
	return fmt.Sprintf("%s_%s.png", strings.ToUpper(symbol), end.Format("20060102"))
}

// NewChartEvent builds the history row for a rendered chart.
func NewChartEvent(req collector.Request, source string, res *Result) *recorder.ChartEvent {
	evt := &recorder.ChartEvent{
		Symbol:     req.Symbol,
		Start:      model.DateOf(req.Start),
		End:        model.DateOf(req.End),
		Interval:   req.Interval,
		Source:     source,
		OutputPath: res.Path,
	}
	if evt.Interval == "" {
		evt.Interval = collector.IntervalDaily
	}
	if res.Analysis != nil {
		evt.Bars = res.Analysis.Series.Len()
	}
	if sum := res.Summary; sum != nil {
		evt.LastClose = sum.LastClose
		evt.LastMACD = sum.MACD
		evt.LastSignal = sum.Signal
		evt.LastRSI = sum.RSI
		evt.Bias = string(sum.Bias)
	}
	return evt
}

// HandleCommand processes a bot command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) notifier.Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Reply{Text: notifier.HelpText}
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch name {
	case "/chart":
		return s.chartCommand(ctx, args)
	case "/history":
		events, err := s.Recorder.RecentCharts(10)
		if err != nil {
			return notifier.Reply{Text: fmt.Sprintf("❌ history: %v", err)}
		}
		return notifier.Reply{Text: notifier.FormatHistory(events)}
	default:
		return notifier.Reply{Text: notifier.HelpText}
	}
}

func (s *Scheduler) chartCommand(ctx context.Context, args []string) notifier.Reply {
	if len(args) == 0 {
		return notifier.Reply{Text: "Usage: /chart SYMBOL [START] [END]"}
	}
	end := model.DateOf(s.Now())
	start := end.AddDate(0, 0, -s.Options.LookbackDays)
	var err error
	if len(args) > 1 {
		if start, err = prompt.ParseDate(args[1]); err != nil {
			return notifier.Reply{Text: err.Error()}
		}
	}
	if len(args) > 2 {
		if end, err = prompt.ParseDate(args[2]); err != nil {
			return notifier.Reply{Text: err.Error()}
		}
	}

	req := collector.Request{Symbol: args[0], Start: start, End: end, Interval: s.Options.Interval}
	res, err := s.Chart(ctx, req, false)
	if err != nil {
		return notifier.Reply{Text: notifier.FormatError(strings.ToUpper(args[0]), err)}
	}
	return notifier.Reply{Text: notifier.FormatCaption(res.Summary), Chart: res.PNG}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}

func (s *Scheduler) trySendChart(ctx context.Context, png []byte, caption string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendChartWithRetry(ctx, png, caption, sendRetries); err != nil {
		s.log.Error().Err(err).Msg("send chart")
	}
}
