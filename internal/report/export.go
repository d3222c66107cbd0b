package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"rewind/internal/backtest"
)

// ExportTradesCSV writes the run's trade log to a CSV file.
func ExportTradesCSV(path string, rep *backtest.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"entry_time", "exit_time", "side", "entry_price", "exit_price",
		"pnl", "pnl_pct", "capital_after",
	}); err != nil {
		return err
	}
	for _, t := range rep.Trades {
		row := []string{
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			string(t.Side),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			formatFloat(t.PnL),
			formatFloat(t.PnLPct),
			formatFloat(t.CapitalAfter),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ExportEquityCSV writes the run's equity curve to a CSV file.
func ExportEquityCSV(path string, rep *backtest.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "equity"}); err != nil {
		return err
	}
	for _, p := range rep.EquityCurve {
		if err := w.Write([]string{
			p.Timestamp.Format(time.RFC3339),
			formatFloat(p.Equity),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
