// Package domain holds the core market-data and trade types shared across
// the rewind platform.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Side is the position side held by a run.
type Side string

const (
	SideFlat  Side = "flat"
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Signal is a strategy's per-candle decision.
type Signal string

const (
	SignalBuy   Signal = "buy"
	SignalSell  Signal = "sell"
	SignalClose Signal = "close"
	SignalNone  Signal = ""
)

// Valid reports whether s is one of the four recognised signal values.
func (s Signal) Valid() bool {
	switch s {
	case SignalBuy, SignalSell, SignalClose, SignalNone:
		return true
	}
	return false
}

// Candle is one OHLCV sample for a fixed time interval. Candles are
// immutable once loaded.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Validate checks that all numeric fields are finite and non-negative.
func (c Candle) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
		{"volume", c.Volume},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s is negative: %v", f.name, f.value)
		}
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is zero")
	}
	return nil
}

// Trade is one completed round trip. It is created when a position closes
// and never mutated afterwards.
type Trade struct {
	EntryTime    time.Time
	ExitTime     time.Time
	Side         Side
	EntryPrice   float64
	ExitPrice    float64
	PnL          float64
	PnLPct       float64
	CapitalAfter float64
}

// EquityPoint is one mark-to-market sample of portfolio value. The engine
// emits exactly one per input candle.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}
