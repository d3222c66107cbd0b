// Package builtins provides the strategy implementations that ship with the
// rewind platform.
package builtins

import (
	"rewind/internal/domain"
	"rewind/internal/indicator"
	"rewind/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*RSIReversal)(nil)

// RSIReversal trades RSI extremes with percentage-based exits: it goes long
// when RSI reaches the overbought threshold (momentum continuation), short
// when RSI reaches the oversold threshold, and closes the position at a
// fixed take-profit or stop-loss percentage of the entry price.
type RSIReversal struct {
	Overbought    float64 // RSI level that triggers a long entry
	Oversold      float64 // RSI level that triggers a short entry
	TakeProfitPct float64 // decimal, e.g. 0.02 for 2%
	StopLossPct   float64 // decimal, e.g. 0.01 for 1%

	side       domain.Side
	entryPrice float64
}

// NewRSIReversal creates the strategy with the stock parameters: entries at
// RSI 80/20 and a 0.7%/0.3% take-profit/stop-loss.
func NewRSIReversal() *RSIReversal {
	return &RSIReversal{
		Overbought:    80,
		Oversold:      20,
		TakeProfitPct: 0.007,
		StopLossPct:   0.003,
		side:          domain.SideFlat,
	}
}

// Name returns "rsi-reversal".
func (s *RSIReversal) Name() string { return "rsi-reversal" }

// OnCandle checks exits first, then entries. The strategy tracks its own
// entry price; it only opens when its view says it is flat, so the ledger
// never has to discard its signals.
func (s *RSIReversal) OnCandle(c domain.Candle, ind indicator.Snapshot) domain.Signal {
	rsi := ind.Value("rsi", 50)

	if s.side != domain.SideFlat {
		pnl := s.unrealizedPct(c.Close)
		if pnl >= s.TakeProfitPct || pnl <= -s.StopLossPct {
			s.side = domain.SideFlat
			s.entryPrice = 0
			return domain.SignalClose
		}
		return domain.SignalNone
	}

	switch {
	case rsi >= s.Overbought:
		s.side = domain.SideLong
		s.entryPrice = c.Close
		return domain.SignalBuy
	case rsi <= s.Oversold:
		s.side = domain.SideShort
		s.entryPrice = c.Close
		return domain.SignalSell
	}
	return domain.SignalNone
}

func (s *RSIReversal) unrealizedPct(price float64) float64 {
	if s.entryPrice == 0 {
		return 0
	}
	if s.side == domain.SideLong {
		return (price - s.entryPrice) / s.entryPrice
	}
	return (s.entryPrice - price) / s.entryPrice
}
