package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockChartViewer/internal/model"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("renderer: empty price series")

var (
	colorUp     = drawing.ColorFromHex("006340")
	colorDown   = drawing.ColorFromHex("A02128")
	colorMACD   = drawing.ColorFromHex("FF0000")
	colorSignal = drawing.ColorFromHex("008000")
	colorRSI    = drawing.ColorFromHex("0000FF")
	colorGrey   = drawing.ColorFromHex("9E9E9E")

	maColors = []drawing.Color{
		drawing.ColorFromHex("FF9800"),
		drawing.ColorFromHex("9C27B0"),
		drawing.ColorFromHex("00BCD4"),
	}
)

// Options controls the rendered image.
type Options struct {
	Width    int
	Height   int
	Title    string
	RSIUpper float64
	RSILower float64
}

// DefaultOptions matches a 12x8 inch figure at 100 dpi.
var DefaultOptions = Options{Width: 1200, Height: 800, RSIUpper: 70, RSILower: 30}

func (o Options) withDefaults(symbol string) Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions.Height
	}
	if o.RSIUpper == 0 {
		o.RSIUpper = DefaultOptions.RSIUpper
	}
	if o.RSILower == 0 {
		o.RSILower = DefaultOptions.RSILower
	}
	if o.Title == "" {
		o.Title = fmt.Sprintf("%s Stock Analysis", symbol)
	}
	return o
}

// panel heights as a share of the full image: price, volume, MACD, RSI
var panelShares = []float64{0.48, 0.14, 0.19, 0.19}

// Render writes a PNG with stacked candlestick, volume, MACD and RSI panels
// sharing one time axis.
func Render(w io.Writer, a *model.Analysis, opts Options) error {
	if a == nil || a.Series.Len() == 0 {
		return ErrEmptySeries
	}
	opts = opts.withDefaults(a.Series.Symbol)
	xr := timeRange(a.Series.Dates())

	heights := make([]int, len(panelShares))
	used := 0
	for i, share := range panelShares {
		heights[i] = int(float64(opts.Height) * share)
		used += heights[i]
	}
	heights[0] += opts.Height - used

	panels := []chart.Chart{
		pricePanel(a, opts, xr, heights[0]),
		volumePanel(a, opts, xr, heights[1]),
		macdPanel(a, opts, xr, heights[2]),
		rsiPanel(a, opts, xr, heights[3]),
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	top := 0
	for i, p := range panels {
		var buf bytes.Buffer
		if err := p.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("render panel %d: %w", i, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("decode panel %d: %w", i, err)
		}
		rect := image.Rect(0, top, opts.Width, top+heights[i])
		draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Src)
		top += heights[i]
	}
	return png.Encode(w, canvas)
}

// SaveFile renders into path, creating parent directories.
func SaveFile(path string, a *model.Analysis, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Render(f, a, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func basePanel(opts Options, xr *chart.ContinuousRange, height int, showXAxis bool) chart.Chart {
	c := chart.Chart{
		Width:  opts.Width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 10, Left: 20, Right: 10, Bottom: 5},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: xr.Min, Max: xr.Max},
			Style:          chart.Style{Hidden: !showXAxis},
		},
	}
	return c
}

func pricePanel(a *model.Analysis, opts Options, xr *chart.ContinuousRange, height int) chart.Chart {
	c := basePanel(opts, xr, height, false)
	c.Title = opts.Title
	c.Background.Padding.Top = 40

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range a.Series.Bars {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	c.YAxis = chart.YAxis{
		Name:           "PRICE",
		ValueFormatter: func(v interface{}) string { return formatFloat(v, "%.2f") },
		Range:          paddedRange(lo, hi, 0.05),
	}
	c.Series = []chart.Series{&CandleSeries{
		Name:      a.Series.Symbol,
		Bars:      a.Series.Bars,
		UpColor:   colorUp,
		DownColor: colorDown,
	}}

	periods := make([]int, 0, len(a.MovingAverages))
	for p := range a.MovingAverages {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	for i, p := range periods {
		if ts, ok := timeSeries(fmt.Sprintf("MA%d", p), a.MovingAverages[p], maColors[i%len(maColors)]); ok {
			c.Series = append(c.Series, ts)
		}
	}
	if len(c.Series) > 1 {
		c.Elements = []chart.Renderable{chart.LegendLeft(&c)}
	}
	return c
}

func volumePanel(a *model.Analysis, opts Options, xr *chart.ContinuousRange, height int) chart.Chart {
	c := basePanel(opts, xr, height, false)

	points := make([]BarPoint, len(a.Series.Bars))
	maxVol := 0.0
	for i, b := range a.Series.Bars {
		color := colorUp
		if b.Close < b.Open {
			color = colorDown
		}
		points[i] = BarPoint{Date: b.Date, Value: float64(b.Volume), Color: color}
		maxVol = math.Max(maxVol, float64(b.Volume))
	}
	if maxVol == 0 {
		maxVol = 1
	}
	c.YAxis = chart.YAxis{
		Name:           "VOLUME",
		ValueFormatter: formatVolume,
		Range:          &chart.ContinuousRange{Min: 0, Max: maxVol * 1.1},
	}
	c.Series = []chart.Series{&BarSeries{Name: "Volume", Points: points}}
	return c
}

func macdPanel(a *model.Analysis, opts Options, xr *chart.ContinuousRange, height int) chart.Chart {
	c := basePanel(opts, xr, height, false)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range []model.IndicatorSeries{a.MACD, a.Signal, a.Histogram} {
		for _, p := range s.Defined() {
			lo = math.Min(lo, p.Value.Float64)
			hi = math.Max(hi, p.Value.Float64)
		}
	}
	c.YAxis = chart.YAxis{
		Name:           "MACD",
		ValueFormatter: func(v interface{}) string { return formatFloat(v, "%.2f") },
		Range:          paddedRange(lo, hi, 0.1),
	}

	var hist []BarPoint
	for _, p := range a.Histogram.Defined() {
		color := colorUp
		if p.Value.Float64 < 0 {
			color = colorDown
		}
		hist = append(hist, BarPoint{Date: p.Date, Value: p.Value.Float64, Color: color})
	}
	c.Series = []chart.Series{&BarSeries{Name: "Histogram", Points: hist}}
	if ts, ok := timeSeries("MACD", a.MACD, colorMACD); ok {
		c.Series = append(c.Series, ts)
	}
	if ts, ok := timeSeries("Signal", a.Signal, colorSignal); ok {
		c.Series = append(c.Series, ts)
	}
	c.Elements = []chart.Renderable{chart.LegendLeft(&c)}
	return c
}

func rsiPanel(a *model.Analysis, opts Options, xr *chart.ContinuousRange, height int) chart.Chart {
	c := basePanel(opts, xr, height, true)
	c.YAxis = chart.YAxis{
		Name:           "RSI",
		ValueFormatter: func(v interface{}) string { return formatFloat(v, "%.0f") },
		Range:          &chart.ContinuousRange{Min: 0, Max: 100},
	}

	first := a.Series.Bars[0].Date
	last := a.Series.Bars[a.Series.Len()-1].Date
	guide := chart.Style{StrokeColor: colorGrey, StrokeWidth: 1, StrokeDashArray: []float64{4, 4}}
	c.Series = []chart.Series{
		chart.TimeSeries{Name: fmt.Sprintf("%.0f", opts.RSIUpper), Style: guide,
			XValues: []time.Time{first, last}, YValues: []float64{opts.RSIUpper, opts.RSIUpper}},
		chart.TimeSeries{Name: fmt.Sprintf("%.0f", opts.RSILower), Style: guide,
			XValues: []time.Time{first, last}, YValues: []float64{opts.RSILower, opts.RSILower}},
	}
	name := "RSI"
	if a.RSIWindow > 0 {
		name = fmt.Sprintf("RSI(%d)", a.RSIWindow)
	}
	if ts, ok := timeSeries(name, a.RSI, colorRSI); ok {
		c.Series = append(c.Series, ts)
	}
	c.Elements = []chart.Renderable{chart.LegendLeft(&c)}
	return c
}

// timeSeries converts the defined points of s into a line; undefined points
// are skipped.
func timeSeries(name string, s model.IndicatorSeries, color drawing.Color) (chart.TimeSeries, bool) {
	defined := s.Defined()
	if len(defined) == 0 {
		return chart.TimeSeries{}, false
	}
	ts := chart.TimeSeries{
		Name:    name,
		Style:   chart.Style{StrokeColor: color, StrokeWidth: 1.5},
		XValues: make([]time.Time, len(defined)),
		YValues: make([]float64, len(defined)),
	}
	for i, p := range defined {
		ts.XValues[i] = p.Date
		ts.YValues[i] = p.Value.Float64
	}
	return ts, true
}

// timeRange spans all dates with half a day of margin on both sides.
func timeRange(dates []time.Time) *chart.ContinuousRange {
	first, last := dates[0], dates[len(dates)-1]
	margin := 12 * time.Hour
	if n := len(dates); n > 1 {
		if step := last.Sub(first) / time.Duration(n-1) / 2; step > margin {
			margin = step
		}
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(first.Add(-margin)),
		Max: chart.TimeToFloat64(last.Add(margin)),
	}
}

// paddedRange widens [lo, hi] by frac on both sides and never returns an
// empty range.
func paddedRange(lo, hi, frac float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: -1, Max: 1}
	}
	pad := (hi - lo) * frac
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*frac, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func formatFloat(v interface{}, layout string) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf(layout, f)
	}
	return ""
}

func formatVolume(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	}
	return fmt.Sprintf("%.0f", f)
}
