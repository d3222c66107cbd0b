package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rewind/internal/domain"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "btc_usdt_1h.csv", `timestamp,open,high,low,close,volume
2024-01-01 00:00:00,100,101,99,100.5,1000
2024-01-01 01:00:00,100.5,102,100,101.5,1100
2024-01-01 02:00:00,101.5,103,101,102.5,900
`)

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if s.Symbol != "btc_usdt_1h" {
		t.Errorf("Symbol = %q, want file stem", s.Symbol)
	}
	if s.Candles[1].Close != 101.5 {
		t.Errorf("second close = %v, want 101.5", s.Candles[1].Close)
	}
	if loc := s.Candles[0].Timestamp.Location(); loc != time.UTC {
		t.Errorf("timestamps not normalized to UTC: %v", loc)
	}
}

func TestLoadCSVHeaderCaseAndOrder(t *testing.T) {
	path := writeTempCSV(t, "data.csv", `Close,Volume,Timestamp,Open,High,Low
100.5,1000,2024-01-01T00:00:00Z,100,101,99
`)

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if s.Candles[0].Close != 100.5 || s.Candles[0].Low != 99 {
		t.Errorf("column mapping wrong: %+v", s.Candles[0])
	}
}

func TestLoadCSVUnixTimestamps(t *testing.T) {
	path := writeTempCSV(t, "data.csv", `timestamp,open,high,low,close,volume
1704067200,100,101,99,100.5,1000
1704070800000,100.5,102,100,101.5,1100
`)

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !s.Candles[0].Timestamp.Equal(want) {
		t.Errorf("unix seconds parsed as %v, want %v", s.Candles[0].Timestamp, want)
	}
	if !s.Candles[1].Timestamp.Equal(want.Add(time.Hour)) {
		t.Errorf("unix millis parsed as %v, want %v", s.Candles[1].Timestamp, want.Add(time.Hour))
	}
}

func TestLoadCSVMissingColumns(t *testing.T) {
	path := writeTempCSV(t, "data.csv", `timestamp,open,close
2024-01-01,100,101
`)

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("LoadCSV accepted a table without high/low/volume")
	}
	for _, col := range []string{"high", "low", "volume"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q does not name missing column %s", err, col)
		}
	}
}

func TestLoadCSVEmptyTable(t *testing.T) {
	path := writeTempCSV(t, "data.csv", "timestamp,open,high,low,close,volume\n")

	_, err := LoadCSV(path)
	if !errors.Is(err, domain.ErrEmptySeries) {
		t.Fatalf("LoadCSV error = %v, want ErrEmptySeries", err)
	}
}

func TestLoadCSVBadRowReportsLine(t *testing.T) {
	path := writeTempCSV(t, "data.csv", `timestamp,open,high,low,close,volume
2024-01-01 00:00:00,100,101,99,100.5,1000
2024-01-01 01:00:00,not-a-number,102,100,101.5,1100
`)

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("LoadCSV accepted a non-numeric open")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not identify line 3", err)
	}
}

func TestLoadCSVNonAscending(t *testing.T) {
	path := writeTempCSV(t, "data.csv", `timestamp,open,high,low,close,volume
2024-01-01 01:00:00,100,101,99,100.5,1000
2024-01-01 00:00:00,100,101,99,100.5,1000
`)

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("LoadCSV accepted non-ascending timestamps")
	}
}

func TestWriteCandlesCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "eth.csv")
	candles := testCandles(5)

	if err := WriteCandlesCSV(path, candles); err != nil {
		t.Fatalf("WriteCandlesCSV: %v", err)
	}

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("round trip produced %d candles, want 5", s.Len())
	}
	for i := range candles {
		if !s.Candles[i].Timestamp.Equal(candles[i].Timestamp) || s.Candles[i].Close != candles[i].Close {
			t.Errorf("candle %d mismatch: got %+v want %+v", i, s.Candles[i], candles[i])
		}
	}
}
