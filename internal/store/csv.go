package store

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rewind/internal/domain"
)

// timestampLayouts are tried in order when the timestamp column is not a
// bare unix integer.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadCSV reads an OHLCV table from a CSV file and returns a validated
// Series. The header must contain timestamp (or date), open, high, low,
// close, and volume columns, case-insensitively and in any order. All
// timestamps are normalized to UTC. The series symbol is taken from the
// file name.
func LoadCSV(path string) (*domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candle file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptySeries)
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	candles := make([]domain.Candle, 0, len(rows)-1)
	for i, row := range rows[1:] {
		c, err := parseRow(row, cols)
		if err != nil {
			// +2: one for the header, one for 1-based line numbers.
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		candles = append(candles, c)
	}

	symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return domain.NewSeries(symbol, candles)
}

// columnIndex maps each required field to its position in the header.
type columnIndex struct {
	timestamp, open, high, low, close, volume int
}

func mapColumns(header []string) (columnIndex, error) {
	idx := columnIndex{timestamp: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "date", "time":
			idx.timestamp = i
		case "open":
			idx.open = i
		case "high":
			idx.high = i
		case "low":
			idx.low = i
		case "close":
			idx.close = i
		case "volume":
			idx.volume = i
		}
	}

	missing := []string{}
	for _, col := range []struct {
		name string
		pos  int
	}{
		{"timestamp", idx.timestamp},
		{"open", idx.open},
		{"high", idx.high},
		{"low", idx.low},
		{"close", idx.close},
		{"volume", idx.volume},
	} {
		if col.pos < 0 {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, cols columnIndex) (domain.Candle, error) {
	var c domain.Candle

	need := cols.volume
	for _, p := range []int{cols.timestamp, cols.open, cols.high, cols.low, cols.close} {
		if p > need {
			need = p
		}
	}
	if len(row) <= need {
		return c, fmt.Errorf("expected at least %d fields, got %d", need+1, len(row))
	}

	ts, err := parseTimestamp(row[cols.timestamp])
	if err != nil {
		return c, err
	}
	c.Timestamp = ts

	for _, f := range []struct {
		name string
		pos  int
		dst  *float64
	}{
		{"open", cols.open, &c.Open},
		{"high", cols.high, &c.High},
		{"low", cols.low, &c.Low},
		{"close", cols.close, &c.Close},
		{"volume", cols.volume, &c.Volume},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[f.pos]), 64)
		if err != nil {
			return c, fmt.Errorf("parsing %s %q: %w", f.name, row[f.pos], err)
		}
		*f.dst = v
	}
	return c, nil
}

// parseTimestamp accepts unix seconds, unix milliseconds, or one of the
// supported layouts, always returning UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		// Heuristic: values past the year-2286 second range are milliseconds.
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// WriteCandlesCSV writes candles as a timestamp/open/high/low/close/volume
// table, one row per candle, timestamps in RFC 3339 UTC.
func WriteCandlesCSV(path string, candles []domain.Candle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range candles {
		err := w.Write([]string{
			c.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
			formatFloat(c.Volume),
		})
		if err != nil {
			return err
		}
	}
	return w.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
