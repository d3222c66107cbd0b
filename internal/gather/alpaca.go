package gather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"rewind/internal/config"
	"rewind/internal/domain"
	"rewind/internal/store"
	"rewind/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*CryptoCandleGatherer)(nil)

// CryptoCandleGatherer fetches historical crypto candles from the Alpaca
// market-data API and writes them to the candle store. Fetches are paced by
// a token-bucket rate limiter and retried with backoff; re-running over an
// already-fetched range is idempotent because the store merges on write.
type CryptoCandleGatherer struct {
	client      *marketdata.Client
	store       store.CandleStore
	symbols     []string
	timeframe   marketdata.TimeFrame
	rng         DateRange
	limiter     *util.RateLimiter
	maxAttempts int
	log         *slog.Logger
}

// NewCryptoCandleGatherer creates a gatherer from the fetch and Alpaca
// sections of the configuration.
func NewCryptoCandleGatherer(cfg *config.Config, s store.CandleStore, log *slog.Logger) (*CryptoCandleGatherer, error) {
	tf, err := parseTimeframe(cfg.Fetch.Timeframe)
	if err != nil {
		return nil, err
	}
	rng, err := ParseDateRange(cfg.Fetch.StartDate)
	if err != nil {
		return nil, err
	}
	if len(cfg.Fetch.Symbols) == 0 {
		return nil, fmt.Errorf("fetch config lists no symbols")
	}

	perMin := cfg.Fetch.RateLimitPerMin
	if perMin <= 0 {
		perMin = 200
	}
	attempts := cfg.Fetch.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	if log == nil {
		log = slog.Default()
	}

	opts := marketdata.ClientOpts{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
	}
	if cfg.Alpaca.DataURL != "" {
		opts.BaseURL = cfg.Alpaca.DataURL
	}

	return &CryptoCandleGatherer{
		client:      marketdata.NewClient(opts),
		store:       s,
		symbols:     cfg.Fetch.Symbols,
		timeframe:   tf,
		rng:         rng,
		limiter:     util.NewRateLimiter(perMin),
		maxAttempts: attempts,
		log:         log.With("gatherer", "crypto-candles"),
	}, nil
}

// Name returns the gatherer identifier.
func (g *CryptoCandleGatherer) Name() string { return "crypto-candles" }

// Run fetches each configured symbol's candles for the configured range and
// persists them.
func (g *CryptoCandleGatherer) Run(ctx context.Context) error {
	for _, symbol := range g.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		candles, err := g.fetchSymbol(ctx, symbol)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", symbol, err)
		}
		if len(candles) == 0 {
			g.log.Warn("no candles returned", "symbol", symbol)
			continue
		}

		if err := g.store.WriteCandles(ctx, symbol, candles); err != nil {
			return fmt.Errorf("storing %s: %w", symbol, err)
		}
		g.log.Info("fetched candles",
			"symbol", symbol,
			"count", len(candles),
			"from", candles[0].Timestamp,
			"to", candles[len(candles)-1].Timestamp,
		)
	}
	return nil
}

func (g *CryptoCandleGatherer) fetchSymbol(ctx context.Context, symbol string) ([]domain.Candle, error) {
	var bars []marketdata.CryptoBar
	err := util.Retry(ctx, g.maxAttempts, time.Second, func() error {
		var err error
		bars, err = g.client.GetCryptoBars(symbol, marketdata.GetCryptoBarsRequest{
			TimeFrame: g.timeframe,
			Start:     g.rng.Start,
			End:       g.rng.End,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(bars))
	for _, b := range bars {
		candles = append(candles, domain.Candle{
			Timestamp: b.Timestamp.UTC(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return candles, nil
}

// parseTimeframe maps the config shorthand to an Alpaca timeframe.
func parseTimeframe(tf string) (marketdata.TimeFrame, error) {
	switch tf {
	case "1m":
		return marketdata.OneMin, nil
	case "5m":
		return marketdata.NewTimeFrame(5, marketdata.Min), nil
	case "15m":
		return marketdata.NewTimeFrame(15, marketdata.Min), nil
	case "1h":
		return marketdata.OneHour, nil
	case "4h":
		return marketdata.NewTimeFrame(4, marketdata.Hour), nil
	case "1d":
		return marketdata.OneDay, nil
	}
	return marketdata.TimeFrame{}, fmt.Errorf("unsupported timeframe %q (want 1m, 5m, 15m, 1h, 4h, or 1d)", tf)
}
