package renderer

import (
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockChartViewer/internal/model"
)

var (
	_ chart.Series                = &CandleSeries{}
	_ chart.BoundedValuesProvider = &CandleSeries{}
	_ chart.Series                = &BarSeries{}
	_ chart.BoundedValuesProvider = &BarSeries{}
)

// CandleSeries draws OHLC bars as candlesticks.
type CandleSeries struct {
	Name      string
	Bars      []model.PriceBar
	UpColor   drawing.Color
	DownColor drawing.Color
}

func (cs *CandleSeries) GetName() string           { return cs.Name }
func (cs *CandleSeries) GetStyle() chart.Style     { return chart.Style{StrokeWidth: 1, StrokeColor: cs.UpColor} }
func (cs *CandleSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (cs *CandleSeries) Validate() error           { return nil }
func (cs *CandleSeries) Len() int                  { return len(cs.Bars) }

func (cs *CandleSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	b := cs.Bars[index]
	return chart.TimeToFloat64(b.Date), b.High, b.Low
}

func (cs *CandleSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	if len(cs.Bars) == 0 {
		return
	}
	dates := make([]time.Time, len(cs.Bars))
	for i, b := range cs.Bars {
		dates[i] = b.Date
	}
	half := bodyWidth(dates, xrange) / 2

	for _, b := range cs.Bars {
		color := cs.UpColor
		if b.Close < b.Open {
			color = cs.DownColor
		}
		x := canvasBox.Left + xrange.Translate(chart.TimeToFloat64(b.Date))
		yHigh := canvasBox.Bottom - yrange.Translate(b.High)
		yLow := canvasBox.Bottom - yrange.Translate(b.Low)
		yOpen := canvasBox.Bottom - yrange.Translate(b.Open)
		yClose := canvasBox.Bottom - yrange.Translate(b.Close)

		r.SetStrokeColor(color)
		r.SetStrokeWidth(1)
		r.MoveTo(x, yHigh)
		r.LineTo(x, yLow)
		r.Stroke()

		top, bottom := yOpen, yClose
		if top > bottom {
			top, bottom = bottom, top
		}
		if bottom == top {
			bottom = top + 1
		}
		chart.Draw.Box(r, chart.Box{Top: top, Left: x - half, Right: x + half, Bottom: bottom},
			chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1})
	}
}

// BarPoint is one vertical bar of a BarSeries.
type BarPoint struct {
	Date  time.Time
	Value float64
	Color drawing.Color
}

// BarSeries draws vertical bars from zero, used for volume and the MACD histogram.
type BarSeries struct {
	Name   string
	Points []BarPoint
}

func (bs *BarSeries) GetName() string           { return bs.Name }
func (bs *BarSeries) GetStyle() chart.Style     { return chart.Style{StrokeWidth: 1, StrokeColor: colorGrey} }
func (bs *BarSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs *BarSeries) Validate() error           { return nil }
func (bs *BarSeries) Len() int                  { return len(bs.Points) }

func (bs *BarSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	p := bs.Points[index]
	return chart.TimeToFloat64(p.Date), p.Value, 0
}

func (bs *BarSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	if len(bs.Points) == 0 {
		return
	}
	dates := make([]time.Time, len(bs.Points))
	for i, p := range bs.Points {
		dates[i] = p.Date
	}
	half := bodyWidth(dates, xrange) / 2
	zero := canvasBox.Bottom - yrange.Translate(0)

	for _, p := range bs.Points {
		x := canvasBox.Left + xrange.Translate(chart.TimeToFloat64(p.Date))
		y := canvasBox.Bottom - yrange.Translate(p.Value)
		top, bottom := y, zero
		if top > bottom {
			top, bottom = bottom, top
		}
		if bottom == top {
			continue
		}
		chart.Draw.Box(r, chart.Box{Top: top, Left: x - half, Right: x + half, Bottom: bottom},
			chart.Style{FillColor: p.Color, StrokeColor: p.Color, StrokeWidth: 1})
	}
}

// bodyWidth returns the pixel width of one bar body: 70% of the tightest
// spacing between neighbouring dates, at least one pixel.
func bodyWidth(dates []time.Time, xrange chart.Range) int {
	minGap := xrange.GetDomain()
	for i := 1; i < len(dates); i++ {
		gap := xrange.Translate(chart.TimeToFloat64(dates[i])) - xrange.Translate(chart.TimeToFloat64(dates[i-1]))
		if gap > 0 && gap < minGap {
			minGap = gap
		}
	}
	if len(dates) == 1 {
		minGap = xrange.GetDomain() / 4
	}
	w := int(float64(minGap) * 0.7)
	if w < 1 {
		w = 1
	}
	return w
}
