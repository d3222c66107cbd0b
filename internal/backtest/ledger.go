// Package backtest replays historical candle series through a strategy and
// produces a performance report.
package backtest

import (
	"time"

	"rewind/internal/domain"
)

// Ledger is the position state machine for a single run: current capital,
// current side, pending entry, the completed trade log, and the equity
// curve. A Ledger is owned exclusively by the run that created it; parallel
// runs each get their own and share nothing.
type Ledger struct {
	capital    float64
	side       domain.Side
	entryPrice float64
	entryTime  time.Time
	trades     []domain.Trade
	equity     []domain.EquityPoint
}

// NewLedger creates a flat ledger holding initialCapital.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		capital: initialCapital,
		side:    domain.SideFlat,
	}
}

// Apply commits one signal against the current state. Signals that would
// open a second position are ignored; at most one position is open at any
// time. A Trade is recorded only when a position closes.
func (l *Ledger) Apply(sig domain.Signal, c domain.Candle) {
	switch l.side {
	case domain.SideFlat:
		switch sig {
		case domain.SignalBuy:
			l.open(domain.SideLong, c)
		case domain.SignalSell:
			l.open(domain.SideShort, c)
		}
	default:
		if sig == domain.SignalClose {
			l.close(c)
		}
	}
}

func (l *Ledger) open(side domain.Side, c domain.Candle) {
	l.side = side
	l.entryPrice = c.Close
	l.entryTime = c.Timestamp
}

// close realizes the open position at the candle's close price. The sign
// convention makes favorable moves positive for both sides, and capital
// compounds: capitalAfter = capitalBefore * (1 + pnlPct).
func (l *Ledger) close(c domain.Candle) {
	pnlPct := l.unrealizedPct(c.Close)
	pnl := l.capital * pnlPct
	l.capital += pnl

	l.trades = append(l.trades, domain.Trade{
		EntryTime:    l.entryTime,
		ExitTime:     c.Timestamp,
		Side:         l.side,
		EntryPrice:   l.entryPrice,
		ExitPrice:    c.Close,
		PnL:          pnl,
		PnLPct:       pnlPct * 100,
		CapitalAfter: l.capital,
	})

	l.side = domain.SideFlat
	l.entryPrice = 0
	l.entryTime = time.Time{}
}

// unrealizedPct is the open position's return as a decimal fraction of the
// entry price. A zero entry price yields zero rather than a division fault.
func (l *Ledger) unrealizedPct(price float64) float64 {
	if l.side == domain.SideFlat || l.entryPrice == 0 {
		return 0
	}
	if l.side == domain.SideLong {
		return (price - l.entryPrice) / l.entryPrice
	}
	return (l.entryPrice - price) / l.entryPrice
}

// MarkEquity appends one mark-to-market equity sample for the candle. Called
// exactly once per candle, trade or not.
func (l *Ledger) MarkEquity(c domain.Candle) {
	l.equity = append(l.equity, domain.EquityPoint{
		Timestamp: c.Timestamp,
		Equity:    l.EquityAt(c.Close),
	})
}

// EquityAt returns portfolio value marked at the given price: capital when
// flat, capital adjusted by the open position's unrealized return otherwise.
func (l *Ledger) EquityAt(price float64) float64 {
	return l.capital * (1 + l.unrealizedPct(price))
}

// Capital returns realized capital (excluding unrealized P&L).
func (l *Ledger) Capital() float64 { return l.capital }

// Side returns the current position side.
func (l *Ledger) Side() domain.Side { return l.side }

// Trades returns the completed trade log in close order.
func (l *Ledger) Trades() []domain.Trade { return l.trades }

// Equity returns the equity curve, one point per processed candle.
func (l *Ledger) Equity() []domain.EquityPoint { return l.equity }
