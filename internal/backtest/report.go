package backtest

import "rewind/internal/domain"

// Report is the immutable outcome of one backtest run.
type Report struct {
	Strategy string
	Symbol   string

	InitialCapital float64
	FinalValue     float64
	TotalReturnPct float64
	MaxDrawdownPct float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64
	AvgWin        float64
	AvgLoss       float64

	EquityCurve []domain.EquityPoint
	Trades      []domain.Trade
}
