package builtins

import (
	"rewind/internal/domain"
	"rewind/internal/indicator"
	"rewind/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross is a moving-average crossover strategy. It buys when the fast
// average crosses above the slow one and closes the position on the cross
// back below. Both averages are consumed from the indicator snapshot by
// name, so the periods live in the run's indicator configuration.
type SMACross struct {
	FastName string
	SlowName string

	prevFast float64
	prevSlow float64
	primed   bool
	long     bool
}

// NewSMACross creates a crossover strategy reading the given snapshot keys.
func NewSMACross(fastName, slowName string) *SMACross {
	return &SMACross{
		FastName: fastName,
		SlowName: slowName,
	}
}

// Name returns "sma-cross".
func (s *SMACross) Name() string { return "sma-cross" }

// OnCandle detects crossovers between the two configured averages. Candles
// where either average is still warming up are skipped without resetting the
// crossover memory.
func (s *SMACross) OnCandle(_ domain.Candle, ind indicator.Snapshot) domain.Signal {
	fast, okFast := ind[s.FastName]
	slow, okSlow := ind[s.SlowName]
	if !okFast || !okSlow {
		return domain.SignalNone
	}

	if !s.primed {
		s.prevFast, s.prevSlow = fast, slow
		s.primed = true
		return domain.SignalNone
	}

	crossedUp := s.prevFast <= s.prevSlow && fast > slow
	crossedDown := s.prevFast >= s.prevSlow && fast < slow
	s.prevFast, s.prevSlow = fast, slow

	switch {
	case crossedUp && !s.long:
		s.long = true
		return domain.SignalBuy
	case crossedDown && s.long:
		s.long = false
		return domain.SignalClose
	}
	return domain.SignalNone
}
