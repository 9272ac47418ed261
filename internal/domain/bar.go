// Package domain holds the shared data model that flows through the
// backtest engine: bars, signals, orders, positions, and the hashed
// strategy configuration. Nothing in this package touches I/O.
package domain

import "time"

// Bar is a single OHLCV observation for one symbol on one date.
//
// A bar whose OHLC fields are all NaN is a void bar: a non-trading day
// for this symbol, inserted during multi-symbol alignment so every
// symbol's series shares the same date index.
type Bar struct {
	Symbol    string
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	AdjClose  float64
}

// IsVoid reports whether this bar carries no real trading data.
func (b Bar) IsVoid() bool {
	return isNaN(b.Open) && isNaN(b.High) && isNaN(b.Low) && isNaN(b.Close)
}

func isNaN(f float64) bool { return f != f }

// Series is an ordered, strictly-ascending-by-date run of bars for one
// symbol. No bar at index t may ever be computed from a bar at index
// greater than t.
type Series []Bar
