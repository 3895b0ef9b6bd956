package model

import (
	"encoding/json"
	"time"
)

// Value is an optional number. The zero value is undefined.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some returns a defined Value.
func Some(v float64) Value { return Value{Float64: v, Valid: true} }

// None returns an undefined Value.
func None() Value { return Value{} }

// MarshalJSON encodes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// Point is one entry of an indicator series.
type Point struct {
	Date  time.Time `json:"date"`
	Value Value     `json:"value"`
}

// IndicatorSeries is aligned index-for-index with the PriceSeries it was computed from.
type IndicatorSeries []Point

// Defined returns only the points that carry a value.
func (s IndicatorSeries) Defined() IndicatorSeries {
	out := make(IndicatorSeries, 0, len(s))
	for _, p := range s {
		if p.Value.Valid {
			out = append(out, p)
		}
	}
	return out
}

// Last returns the most recent defined point.
func (s IndicatorSeries) Last() (Point, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Value.Valid {
			return s[i], true
		}
	}
	return Point{}, false
}

// Analysis bundles a price series with the indicators derived from it.
type Analysis struct {
	Series    PriceSeries
	MACD      IndicatorSeries
	Signal    IndicatorSeries
	Histogram IndicatorSeries
	RSI       IndicatorSeries
	// MovingAverages is keyed by period; empty unless configured.
	MovingAverages map[int]IndicatorSeries
	RSIWindow      int
}
