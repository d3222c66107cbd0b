package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rewind/internal/backtest"
	"rewind/internal/config"
	"rewind/internal/gather"
	"rewind/internal/report"
	"rewind/internal/store"
	"rewind/internal/strategy"
	"rewind/internal/strategy/builtins"
	"rewind/internal/util"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: rewind <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  run         Run a backtest over stored or CSV candles\n")
	fmt.Fprintf(os.Stderr, "  fetch       Fetch candles from Alpaca into the data store\n")
	fmt.Fprintf(os.Stderr, "  strategies  List registered strategies\n")
	fmt.Fprintf(os.Stderr, "  data        List symbols with stored candles\n")
	fmt.Fprintf(os.Stderr, "  runs        List past backtest runs\n")
	fmt.Fprintf(os.Stderr, "  version     Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	flag.Usage = usage
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(ctx, os.Args[2:])
	case "fetch":
		err = cmdFetch(ctx, os.Args[2:])
	case "strategies":
		err = cmdStrategies(os.Args[2:])
	case "data":
		err = cmdData(ctx, os.Args[2:])
	case "runs":
		err = cmdRuns(ctx, os.Args[2:])
	case "version":
		fmt.Printf("rewind %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rewind %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file path from the -config flag value or
// the REWIND_CONFIG env var, sets up the default logger, and returns the
// loaded configuration.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("REWIND_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))
	return cfg, nil
}

func newRegistry() *strategy.Registry {
	reg := strategy.NewRegistry()
	builtins.RegisterAll(reg)
	return reg
}

func cmdRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	strategyName := fs.String("strategy", "rsi-reversal", "registered strategy name")
	symbol := fs.String("symbol", "", "symbol to backtest from the data store")
	csvPath := fs.String("csv", "", "CSV candle file to backtest instead of the store")
	startStr := fs.String("start", "", "start date (2006-01-02), store-backed runs only")
	endStr := fs.String("end", "", "end date (2006-01-02), store-backed runs only")
	capital := fs.Float64("capital", 0, "initial capital (default from config)")
	tradesOut := fs.String("export-trades", "", "write the trade log to this CSV file")
	equityOut := fs.String("export-equity", "", "write the equity curve to this CSV file")
	noSave := fs.Bool("no-save", false, "do not record the run in history")
	fs.Parse(args)

	if *symbol == "" && *csvPath == "" {
		return fmt.Errorf("either -symbol or -csv is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	runCfg := backtest.RunConfig{
		InitialCapital: cfg.Backtest.InitialCapital,
		Indicators:     cfg.Backtest.Indicators,
	}
	if *capital > 0 {
		runCfg.InitialCapital = *capital
	}

	var runs store.RunStore
	if !*noSave {
		sq, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer sq.Close()
		runs = sq
	}

	bt := backtest.NewBacktester(store.NewParquetStore(cfg.Storage.DataDir), runs, newRegistry(), nil)

	var rep *backtest.Report
	if *csvPath != "" {
		rep, err = bt.RunCSV(ctx, *strategyName, *csvPath, runCfg)
	} else {
		var start, end time.Time
		end = time.Now().UTC()
		if *startStr != "" {
			if start, err = time.Parse("2006-01-02", *startStr); err != nil {
				return fmt.Errorf("parsing -start: %w", err)
			}
		}
		if *endStr != "" {
			if end, err = time.Parse("2006-01-02", *endStr); err != nil {
				return fmt.Errorf("parsing -end: %w", err)
			}
		}
		rep, err = bt.Run(ctx, *strategyName, *symbol, start, end, runCfg)
	}
	if err != nil {
		return err
	}

	if err := report.Render(os.Stdout, rep); err != nil {
		return err
	}
	fmt.Println()
	if err := report.RenderTrades(os.Stdout, rep.Trades); err != nil {
		return err
	}

	if *tradesOut != "" {
		if err := report.ExportTradesCSV(*tradesOut, rep); err != nil {
			return err
		}
		fmt.Printf("\ntrades written to %s\n", *tradesOut)
	}
	if *equityOut != "" {
		if err := report.ExportEquityCSV(*equityOut, rep); err != nil {
			return err
		}
		fmt.Printf("equity curve written to %s\n", *equityOut)
	}
	return nil
}

func cmdFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	g, err := gather.NewCryptoCandleGatherer(cfg, store.NewParquetStore(cfg.Storage.DataDir), nil)
	if err != nil {
		return err
	}
	return g.Run(ctx)
}

func cmdStrategies(args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ExitOnError)
	fs.Parse(args)

	for _, name := range newRegistry().List() {
		fmt.Println(name)
	}
	return nil
}

func cmdData(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("data", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	symbols, err := store.NewParquetStore(cfg.Storage.DataDir).ListSymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		fmt.Println("no stored candles; run `rewind fetch` first")
		return nil
	}
	for _, s := range symbols {
		fmt.Println(s)
	}
	return nil
}

func cmdRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	limit := fs.Int("limit", 20, "maximum number of runs to list")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	sq, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer sq.Close()

	recs, err := sq.ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-5s %-20s %-16s %-12s %10s %9s %7s\n",
		"ID", "CREATED", "STRATEGY", "SYMBOL", "RETURN%", "MAXDD%", "TRADES")
	for _, r := range recs {
		fmt.Printf("%-5d %-20s %-16s %-12s %+9.2f%% %8.2f%% %7d\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Strategy,
			r.Symbol,
			r.TotalReturnPct,
			r.MaxDrawdownPct,
			r.TotalTrades,
		)
	}
	return nil
}
