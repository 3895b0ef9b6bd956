package model

import "time"

// Bias is the overall reading of a chart.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

// Crossover describes the MACD/signal relationship over the last two bars.
type Crossover string

const (
	CrossBullish Crossover = "BULLISH_CROSS"
	CrossBearish Crossover = "BEARISH_CROSS"
	CrossNone    Crossover = "NONE"
)

// RSIZone classifies the latest RSI value.
type RSIZone string

const (
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneOverbought RSIZone = "OVERBOUGHT"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneUndefined  RSIZone = "UNDEFINED"
)

// Reading represents a single scored observation.
type Reading struct {
	Name       string
	Score      float64
	Commentary string
}

// Summary is the textual digest of an Analysis.
type Summary struct {
	Symbol        string
	From          time.Time
	AsOf          time.Time
	Bars          int
	LastClose     float64
	ChangePct     float64
	PeriodHigh    float64
	PeriodLow     float64
	RangePosition float64 // 0.0 ~ 1.0
	MACD          Value
	Signal        Value
	Histogram     Value
	RSI           Value
	Crossover     Crossover
	RSIZone       RSIZone
	Readings      []Reading
	Score         float64
	Bias          Bias
	WarningMsg    string
}
