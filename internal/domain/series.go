package domain

import (
	"errors"
	"fmt"
)

// ErrEmptySeries is returned when a series is constructed with no candles.
var ErrEmptySeries = errors.New("series has no candles")

// Series is a validated, time-ordered candle table. It is read-only for the
// duration of a backtest run.
type Series struct {
	Symbol  string
	Candles []Candle
}

// NewSeries validates candles and wraps them in a Series. Timestamps must be
// strictly increasing (which also rules out duplicates) and every numeric
// field must be finite and non-negative. Validation failures identify the
// offending row so callers can locate the fault in the source table.
func NewSeries(symbol string, candles []Candle) (*Series, error) {
	if len(candles) == 0 {
		return nil, ErrEmptySeries
	}
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := candles[i-1].Timestamp
		if c.Timestamp.Equal(prev) {
			return nil, fmt.Errorf("candle %d: duplicate timestamp %s", i, c.Timestamp.UTC())
		}
		if c.Timestamp.Before(prev) {
			return nil, fmt.Errorf("candle %d: timestamp %s precedes %s", i, c.Timestamp.UTC(), prev.UTC())
		}
	}
	return &Series{Symbol: symbol, Candles: candles}, nil
}

// Len returns the number of candles in the series.
func (s *Series) Len() int {
	return len(s.Candles)
}
