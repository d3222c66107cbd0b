package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rewind/internal/domain"
)

func testCandles(n int) []domain.Candle {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	for i := range out {
		price := 100.0 + float64(i)
		out[i] = domain.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price + 1, Low: price - 1, Close: price + 0.5,
			Volume: 1000,
		}
	}
	return out
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	got := ps.candlePath("btc/usdt", 2024)
	want := filepath.Join("/data", "candles", "BTC-USDT", "2024.parquet")
	if got != want {
		t.Errorf("candlePath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadCandles(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()
	candles := testCandles(3)

	if err := ps.WriteCandles(ctx, "BTC-USDT", candles); err != nil {
		t.Fatalf("WriteCandles: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadCandles(ctx, "BTC-USDT", start, end)
	if err != nil {
		t.Fatalf("ReadCandles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadCandles returned %d candles, want 3", len(got))
	}
	if got[0].Close != 100.5 {
		t.Errorf("first candle Close = %v, want 100.5", got[0].Close)
	}
	if !got[2].Timestamp.After(got[0].Timestamp) {
		t.Error("candles are not in ascending timestamp order")
	}
}

func TestParquetStoreMergeOnRewrite(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()
	candles := testCandles(4)

	// Write the first half, then an overlapping second half.
	if err := ps.WriteCandles(ctx, "ETH-USDT", candles[:2]); err != nil {
		t.Fatalf("WriteCandles (first): %v", err)
	}
	if err := ps.WriteCandles(ctx, "ETH-USDT", candles[1:]); err != nil {
		t.Fatalf("WriteCandles (second): %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadCandles(ctx, "ETH-USDT", start, end)
	if err != nil {
		t.Fatalf("ReadCandles: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("ReadCandles returned %d candles after merge, want 4", len(got))
	}
}

func TestParquetStoreReadRangeFilter(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()
	candles := testCandles(10)

	if err := ps.WriteCandles(ctx, "BTC-USDT", candles); err != nil {
		t.Fatalf("WriteCandles: %v", err)
	}

	got, err := ps.ReadCandles(ctx, "BTC-USDT", candles[2].Timestamp, candles[5].Timestamp)
	if err != nil {
		t.Fatalf("ReadCandles: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("ReadCandles returned %d candles, want 4 (inclusive range)", len(got))
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := ps.WriteCandles(ctx, "ETH-USDT", testCandles(1)); err != nil {
		t.Fatalf("WriteCandles: %v", err)
	}
	if err := ps.WriteCandles(ctx, "BTC-USDT", testCandles(1)); err != nil {
		t.Fatalf("WriteCandles: %v", err)
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "BTC-USDT" || symbols[1] != "ETH-USDT" {
		t.Errorf("ListSymbols = %v, want [BTC-USDT ETH-USDT]", symbols)
	}
}

func TestSQLiteStoreSaveAndGetRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rewind.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &RunRecord{
		CreatedAt:      time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Strategy:       "rsi-reversal",
		Symbol:         "BTC-USDT",
		InitialCapital: 10000,
		FinalValue:     11000,
		TotalReturnPct: 10,
		MaxDrawdownPct: 2.5,
		TotalTrades:    1,
		WinningTrades:  1,
		WinRatePct:     100,
		AvgWin:         1000,
		Trades: []domain.Trade{
			{
				EntryTime:    entry,
				ExitTime:     entry.Add(time.Hour),
				Side:         domain.SideLong,
				EntryPrice:   100,
				ExitPrice:    110,
				PnL:          1000,
				PnLPct:       10,
				CapitalAfter: 11000,
			},
		},
	}

	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("SaveRun did not set rec.ID")
	}

	got, err := s.GetRun(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Strategy != "rsi-reversal" || got.Symbol != "BTC-USDT" {
		t.Errorf("GetRun returned strategy=%q symbol=%q", got.Strategy, got.Symbol)
	}
	if got.FinalValue != 11000 {
		t.Errorf("FinalValue = %v, want 11000", got.FinalValue)
	}
	if len(got.Trades) != 1 {
		t.Fatalf("GetRun returned %d trades, want 1", len(got.Trades))
	}
	tr := got.Trades[0]
	if tr.Side != domain.SideLong || tr.PnL != 1000 || !tr.EntryTime.Equal(entry) {
		t.Errorf("trade round-trip mismatch: %+v", tr)
	}
}

func TestSQLiteStoreListRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rewind.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := &RunRecord{
			CreatedAt: time.Now().UTC(),
			Strategy:  "sma-cross",
			Symbol:    "ETH-USDT",
		}
		if err := s.SaveRun(ctx, rec); err != nil {
			t.Fatalf("SaveRun #%d: %v", i, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns returned %d runs, want 2", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Error("ListRuns is not newest-first")
	}
}
