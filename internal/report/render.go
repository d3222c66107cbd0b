// Package report formats backtest results for terminal display and exports
// them to tabular files.
package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rewind/internal/backtest"
	"rewind/internal/domain"
)

var printer = message.NewPrinter(language.English)

// Render writes a human-readable summary of the run to w.
func Render(w io.Writer, rep *backtest.Report) error {
	var b strings.Builder

	title := fmt.Sprintf("%s on %s", rep.Strategy, rep.Symbol)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")

	printer.Fprintf(&b, "Initial capital:  %.2f\n", rep.InitialCapital)
	printer.Fprintf(&b, "Final value:      %.2f\n", rep.FinalValue)
	printer.Fprintf(&b, "Total return:     %+.2f%%\n", rep.TotalReturnPct)
	printer.Fprintf(&b, "Max drawdown:     %.2f%%\n", rep.MaxDrawdownPct)
	b.WriteString("\n")

	if rep.TotalTrades == 0 {
		b.WriteString("No trades.\n")
	} else {
		printer.Fprintf(&b, "Trades:           %d (%d won, %d lost)\n",
			rep.TotalTrades, rep.WinningTrades, rep.LosingTrades)
		printer.Fprintf(&b, "Win rate:         %.1f%%\n", rep.WinRatePct)
		printer.Fprintf(&b, "Avg win:          %.2f\n", rep.AvgWin)
		printer.Fprintf(&b, "Avg loss:         %.2f\n", rep.AvgLoss)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderTrades writes the trade log as an aligned table.
func RenderTrades(w io.Writer, trades []domain.Trade) error {
	if len(trades) == 0 {
		_, err := io.WriteString(w, "No trades.\n")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-20s %-20s %-5s %12s %12s %12s %8s\n",
		"#", "ENTRY", "EXIT", "SIDE", "ENTRY PX", "EXIT PX", "PNL", "PNL%")
	for i, t := range trades {
		printer.Fprintf(&b, "%-4d %-20s %-20s %-5s %12.4f %12.4f %12.2f %+7.2f%%\n",
			i+1,
			t.EntryTime.Format("2006-01-02 15:04"),
			t.ExitTime.Format("2006-01-02 15:04"),
			string(t.Side),
			t.EntryPrice,
			t.ExitPrice,
			t.PnL,
			t.PnLPct,
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
