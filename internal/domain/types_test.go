package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func candleAt(ts time.Time, close float64) Candle {
	return Candle{
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    1,
	}
}

func TestSignalValid(t *testing.T) {
	for _, s := range []Signal{SignalBuy, SignalSell, SignalClose, SignalNone} {
		if !s.Valid() {
			t.Errorf("Signal(%q).Valid() = false, want true", s)
		}
	}
	if Signal("hold").Valid() {
		t.Error(`Signal("hold").Valid() = true, want false`)
	}
}

func TestCandleValidate(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ok := candleAt(ts, 100)
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() on good candle returned error: %v", err)
	}

	nan := candleAt(ts, 100)
	nan.High = math.NaN()
	if err := nan.Validate(); err == nil {
		t.Error("Validate() accepted NaN high")
	}

	neg := candleAt(ts, 100)
	neg.Volume = -5
	if err := neg.Validate(); err == nil {
		t.Error("Validate() accepted negative volume")
	}

	zerots := candleAt(time.Time{}, 100)
	if err := zerots.Validate(); err == nil {
		t.Error("Validate() accepted zero timestamp")
	}
}

func TestNewSeriesEmpty(t *testing.T) {
	_, err := NewSeries("BTCUSD", nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("NewSeries(nil) error = %v, want ErrEmptySeries", err)
	}
}

func TestNewSeriesRejectsDuplicateTimestamps(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewSeries("BTCUSD", []Candle{
		candleAt(ts, 100),
		candleAt(ts, 101),
	})
	if err == nil {
		t.Fatal("NewSeries accepted duplicate timestamps")
	}
	if !strings.Contains(err.Error(), "candle 1") {
		t.Errorf("error %q does not identify the offending row", err)
	}
}

func TestNewSeriesRejectsDescendingTimestamps(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewSeries("BTCUSD", []Candle{
		candleAt(ts.Add(time.Hour), 100),
		candleAt(ts, 101),
	})
	if err == nil {
		t.Fatal("NewSeries accepted non-ascending timestamps")
	}
}

func TestNewSeriesValid(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewSeries("BTCUSD", []Candle{
		candleAt(ts, 100),
		candleAt(ts.Add(time.Hour), 101),
		candleAt(ts.Add(2*time.Hour), 102),
	})
	if err != nil {
		t.Fatalf("NewSeries returned error: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if s.Symbol != "BTCUSD" {
		t.Errorf("Symbol = %q, want BTCUSD", s.Symbol)
	}
}
