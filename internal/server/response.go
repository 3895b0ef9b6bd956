package server

import (
	"time"

	"StockChartViewer/internal/collector"
	"StockChartViewer/internal/model"
)

type barJSON struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type summaryJSON struct {
	LastClose  float64     `json:"last_close"`
	ChangePct  float64     `json:"change_pct"`
	PeriodHigh float64     `json:"period_high"`
	PeriodLow  float64     `json:"period_low"`
	MACD       model.Value `json:"macd"`
	Signal     model.Value `json:"signal"`
	Histogram  model.Value `json:"histogram"`
	RSI        model.Value `json:"rsi"`
	Crossover  string      `json:"crossover"`
	RSIZone    string      `json:"rsi_zone"`
	Bias       string      `json:"bias"`
	Score      float64     `json:"score"`
}

type analysisResponse struct {
	Symbol    string                `json:"symbol"`
	Start     string                `json:"start"`
	End       string                `json:"end"`
	Interval  string                `json:"interval"`
	Bars      []barJSON             `json:"bars"`
	MACD      model.IndicatorSeries `json:"macd"`
	Signal    model.IndicatorSeries `json:"signal"`
	Histogram model.IndicatorSeries `json:"histogram"`
	RSI       model.IndicatorSeries `json:"rsi"`
	RSIWindow int                   `json:"rsi_window"`
	Summary   *summaryJSON          `json:"summary,omitempty"`
}

type historyJSON struct {
	Symbol    string      `json:"symbol"`
	Start     string      `json:"start"`
	End       string      `json:"end"`
	Interval  string      `json:"interval"`
	Bars      int         `json:"bars"`
	Source    string      `json:"source"`
	LastClose float64     `json:"last_close"`
	LastRSI   model.Value `json:"last_rsi"`
	Bias      string      `json:"bias"`
	CreatedAt time.Time   `json:"created_at"`
}

func newAnalysisResponse(req collector.Request, a *model.Analysis, s *model.Summary) analysisResponse {
	resp := analysisResponse{
		Symbol:    a.Series.Symbol,
		Start:     req.Start.Format(time.DateOnly),
		End:       req.End.Format(time.DateOnly),
		Interval:  req.Interval,
		Bars:      make([]barJSON, 0, a.Series.Len()),
		MACD:      a.MACD,
		Signal:    a.Signal,
		Histogram: a.Histogram,
		RSI:       a.RSI,
		RSIWindow: a.RSIWindow,
	}
	if resp.Interval == "" {
		resp.Interval = collector.IntervalDaily
	}
	for _, b := range a.Series.Bars {
		resp.Bars = append(resp.Bars, barJSON{
			Date: b.Date.Format(time.DateOnly), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		})
	}
	if s != nil {
		resp.Summary = &summaryJSON{
			LastClose: s.LastClose, ChangePct: s.ChangePct, PeriodHigh: s.PeriodHigh, PeriodLow: s.PeriodLow,
			MACD: s.MACD, Signal: s.Signal, Histogram: s.Histogram, RSI: s.RSI,
			Crossover: string(s.Crossover), RSIZone: string(s.RSIZone), Bias: string(s.Bias), Score: s.Score,
		}
	}
	return resp
}
