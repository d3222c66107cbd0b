package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rewind/internal/domain"
	"rewind/internal/indicator"
	"rewind/internal/store"
	"rewind/internal/strategy"
)

// DefaultInitialCapital is used when a run config leaves capital unset.
const DefaultInitialCapital = 10000.0

// ErrStrategyNotFound is returned when the requested strategy is not in the
// registry.
var ErrStrategyNotFound = errors.New("strategy not found")

// RunConfig holds the per-run parameters.
type RunConfig struct {
	InitialCapital float64
	Indicators     indicator.Config
}

// Replay walks the series in timestamp order and drives the strategy. Per
// candle, strictly in this order: compute the indicator snapshot from
// history up to and including the candle, ask the strategy to decide, apply
// the signal to the ledger, and sample equity. That ordering is the
// no-lookahead backbone; nothing after the current candle is ever visible
// to indicators or the strategy.
//
// A position still open when the series ends is left open: it contributes
// to final equity at the last close but produces no Trade.
func Replay(series *domain.Series, strat strategy.Strategy, cfg RunConfig, log *slog.Logger) (*Report, error) {
	if series == nil || series.Len() == 0 {
		return nil, domain.ErrEmptySeries
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = DefaultInitialCapital
	}
	if len(cfg.Indicators.Specs) == 0 {
		cfg.Indicators = indicator.DefaultConfig()
	}

	eng := indicator.New(cfg.Indicators)
	ledger := NewLedger(cfg.InitialCapital)

	for i, c := range series.Candles {
		snap := eng.At(series.Candles[:i+1])

		sig := strat.OnCandle(c, snap)
		if !sig.Valid() {
			// Contract deviation: coerce to a no-op and keep going, so one
			// malformed tick does not abort a long run.
			log.Warn("strategy returned unknown signal, treating as none",
				"strategy", strat.Name(),
				"signal", string(sig),
				"timestamp", c.Timestamp,
			)
			sig = domain.SignalNone
		}

		ledger.Apply(sig, c)
		ledger.MarkEquity(c)
	}

	rep := computeReport(ledger, cfg.InitialCapital)
	rep.Strategy = strat.Name()
	rep.Symbol = series.Symbol
	return rep, nil
}

// Backtester wires candle storage, the strategy registry, and the run
// history store into a single entry point.
type Backtester struct {
	candles  store.CandleStore
	runs     store.RunStore
	registry *strategy.Registry
	log      *slog.Logger
}

// NewBacktester creates a Backtester. The run store may be nil, in which
// case results are returned but not persisted.
func NewBacktester(candles store.CandleStore, runs store.RunStore, registry *strategy.Registry, log *slog.Logger) *Backtester {
	if log == nil {
		log = slog.Default()
	}
	return &Backtester{
		candles:  candles,
		runs:     runs,
		registry: registry,
		log:      log,
	}
}

// Run executes a backtest for the named strategy over the symbol's stored
// candles in [start, end], starting from cfg.InitialCapital.
func (bt *Backtester) Run(ctx context.Context, strategyName, symbol string, start, end time.Time, cfg RunConfig) (*Report, error) {
	strat, ok := bt.registry.New(strategyName)
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrStrategyNotFound, strategyName, bt.registry.List())
	}

	candles, err := bt.candles.ReadCandles(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("reading candles for %s: %w", symbol, err)
	}
	series, err := domain.NewSeries(symbol, candles)
	if err != nil {
		return nil, fmt.Errorf("validating candles for %s: %w", symbol, err)
	}

	bt.log.Info("starting backtest",
		"strategy", strategyName,
		"symbol", symbol,
		"candles", series.Len(),
		"capital", cfg.InitialCapital,
	)

	rep, err := Replay(series, strat, cfg, bt.log)
	if err != nil {
		return nil, err
	}

	if bt.runs != nil {
		if err := bt.runs.SaveRun(ctx, recordFromReport(rep)); err != nil {
			return nil, fmt.Errorf("persisting run: %w", err)
		}
	}
	return rep, nil
}

// RunCSV executes a backtest over a CSV candle table instead of the store.
func (bt *Backtester) RunCSV(ctx context.Context, strategyName, csvPath string, cfg RunConfig) (*Report, error) {
	strat, ok := bt.registry.New(strategyName)
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrStrategyNotFound, strategyName, bt.registry.List())
	}

	series, err := store.LoadCSV(csvPath)
	if err != nil {
		return nil, err
	}

	rep, err := Replay(series, strat, cfg, bt.log)
	if err != nil {
		return nil, err
	}

	if bt.runs != nil {
		if err := bt.runs.SaveRun(ctx, recordFromReport(rep)); err != nil {
			return nil, fmt.Errorf("persisting run: %w", err)
		}
	}
	return rep, nil
}

func recordFromReport(rep *Report) *store.RunRecord {
	return &store.RunRecord{
		CreatedAt:      time.Now().UTC(),
		Strategy:       rep.Strategy,
		Symbol:         rep.Symbol,
		InitialCapital: rep.InitialCapital,
		FinalValue:     rep.FinalValue,
		TotalReturnPct: rep.TotalReturnPct,
		MaxDrawdownPct: rep.MaxDrawdownPct,
		TotalTrades:    rep.TotalTrades,
		WinningTrades:  rep.WinningTrades,
		LosingTrades:   rep.LosingTrades,
		WinRatePct:     rep.WinRatePct,
		AvgWin:         rep.AvgWin,
		AvgLoss:        rep.AvgLoss,
		Trades:         rep.Trades,
	}
}
