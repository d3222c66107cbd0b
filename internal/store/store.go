// Package store persists and retrieves candle data and backtest run history.
package store

import (
	"context"
	"time"

	"rewind/internal/domain"
)

// CandleStore persists and retrieves OHLCV candle data.
type CandleStore interface {
	// WriteCandles persists a batch of candles for a symbol.
	WriteCandles(ctx context.Context, symbol string, candles []domain.Candle) error

	// ReadCandles returns the symbol's candles within [start, end], in
	// ascending timestamp order.
	ReadCandles(ctx context.Context, symbol string, start, end time.Time) ([]domain.Candle, error)

	// ListSymbols returns all distinct symbols with stored candles.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunRecord is a persisted backtest run: the aggregate metrics plus the
// completed trade log.
type RunRecord struct {
	ID        int64
	CreatedAt time.Time
	Strategy  string
	Symbol    string

	InitialCapital float64
	FinalValue     float64
	TotalReturnPct float64
	MaxDrawdownPct float64
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRatePct     float64
	AvgWin         float64
	AvgLoss        float64

	Trades []domain.Trade
}

// RunStore persists and retrieves backtest run history.
type RunStore interface {
	// SaveRun inserts a run and its trades, setting rec.ID on success.
	SaveRun(ctx context.Context, rec *RunRecord) error

	// ListRuns returns the most recent runs (without trades), newest first.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// GetRun retrieves one run by ID, including its trades.
	GetRun(ctx context.Context, id int64) (*RunRecord, error)
}
