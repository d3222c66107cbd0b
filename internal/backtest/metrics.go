package backtest

// computeReport is a pure pass over the finalized ledger. All derived ratios
// define 0 under their degenerate inputs (no trades, no winners, zero peak)
// instead of raising a division fault.
func computeReport(l *Ledger, initialCapital float64) *Report {
	rep := &Report{
		InitialCapital: initialCapital,
		FinalValue:     initialCapital,
		EquityCurve:    l.Equity(),
		Trades:         l.Trades(),
		TotalTrades:    len(l.Trades()),
	}

	if curve := l.Equity(); len(curve) > 0 {
		rep.FinalValue = curve[len(curve)-1].Equity
	}
	if initialCapital != 0 {
		rep.TotalReturnPct = (rep.FinalValue - initialCapital) / initialCapital * 100
	}

	// Max drawdown: largest percentage decline from a running peak.
	peak := 0.0
	for _, p := range l.Equity() {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - p.Equity) / peak * 100
		if dd > rep.MaxDrawdownPct {
			rep.MaxDrawdownPct = dd
		}
	}

	var winSum, lossSum float64
	for _, t := range l.Trades() {
		switch {
		case t.PnL > 0:
			rep.WinningTrades++
			winSum += t.PnL
		case t.PnL < 0:
			rep.LosingTrades++
			lossSum += t.PnL
		}
		// Zero-pnl trades count toward TotalTrades only.
	}

	if rep.TotalTrades > 0 {
		rep.WinRatePct = float64(rep.WinningTrades) / float64(rep.TotalTrades) * 100
	}
	if rep.WinningTrades > 0 {
		rep.AvgWin = winSum / float64(rep.WinningTrades)
	}
	if rep.LosingTrades > 0 {
		rep.AvgLoss = lossSum / float64(rep.LosingTrades)
	}
	return rep
}
