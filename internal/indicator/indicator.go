// Package indicator computes named technical indicators over a trailing
// candle window. The engine only ever sees history up to and including the
// current candle; callers pass table[:i+1], which makes look-ahead
// structurally impossible.
package indicator

import (
	"math"

	"rewind/internal/domain"
)

// Kind identifies a built-in indicator computation.
type Kind string

const (
	KindRSI Kind = "rsi"
	KindSMA Kind = "sma"
	KindEMA Kind = "ema"
)

// Spec describes one configured indicator: the snapshot key it is published
// under, its computation kind and window, and an optional neutral default
// used when the available history is shorter than the window. A nil Default
// means the indicator is omitted from the snapshot instead.
type Spec struct {
	Name    string   `yaml:"name"`
	Kind    Kind     `yaml:"kind"`
	Period  int      `yaml:"period"`
	Default *float64 `yaml:"default,omitempty"`
}

// Config is the indicator set for a run. MaxLookback caps how far back any
// indicator may read; zero means unbounded.
type Config struct {
	Specs       []Spec `yaml:"specs"`
	MaxLookback int    `yaml:"max_lookback"`
}

// DefaultConfig mirrors the platform's stock indicator set: a 14-period RSI
// with a neutral 50 fallback, plus the 10 and 20 period SMAs the built-in
// crossover strategy reads. The SMAs have no default and are omitted until
// enough history exists.
func DefaultConfig() Config {
	neutral := 50.0
	return Config{
		Specs: []Spec{
			{Name: "rsi", Kind: KindRSI, Period: 14, Default: &neutral},
			{Name: "sma_10", Kind: KindSMA, Period: 10},
			{Name: "sma_20", Kind: KindSMA, Period: 20},
		},
		MaxLookback: 50,
	}
}

// Snapshot maps indicator names to their values at one candle index. A
// snapshot is computed fresh per index and never persisted across indices.
type Snapshot map[string]float64

// Value returns the named indicator, or def when it was omitted.
func (s Snapshot) Value(name string, def float64) float64 {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

// Engine evaluates a configured indicator set against candle history.
type Engine struct {
	cfg Config
}

// New creates an Engine for the given configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// At computes the snapshot for the last candle of history. Indicators whose
// window exceeds the available history resolve to their configured default,
// or are omitted when none is configured. Insufficient history is never an
// error.
func (e *Engine) At(history []domain.Candle) Snapshot {
	if e.cfg.MaxLookback > 0 && len(history) > e.cfg.MaxLookback {
		history = history[len(history)-e.cfg.MaxLookback:]
	}

	snap := make(Snapshot, len(e.cfg.Specs))
	for _, spec := range e.cfg.Specs {
		v, ok := compute(spec, history)
		if !ok {
			if spec.Default != nil {
				snap[spec.Name] = *spec.Default
			}
			continue
		}
		snap[spec.Name] = v
	}
	return snap
}

func compute(spec Spec, history []domain.Candle) (float64, bool) {
	if spec.Period <= 0 {
		return 0, false
	}
	switch spec.Kind {
	case KindRSI:
		return rsi(history, spec.Period)
	case KindSMA:
		return sma(history, spec.Period)
	case KindEMA:
		return ema(history, spec.Period)
	}
	return 0, false
}

// rsi is the Wilder-smoothed Relative Strength Index over closes. It needs
// period+1 candles for the first value.
func rsi(history []domain.Candle, period int) (float64, bool) {
	if len(history) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := history[i].Close - history[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(history); i++ {
		change := history[i].Close - history[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// sma is the arithmetic mean of the last period closes.
func sma(history []domain.Candle, period int) (float64, bool) {
	if len(history) < period {
		return 0, false
	}
	sum := 0.0
	for _, c := range history[len(history)-period:] {
		sum += c.Close
	}
	return sum / float64(period), true
}

// ema seeds with the SMA of the first period closes, then applies the usual
// 2/(period+1) smoothing across the remainder of the window.
func ema(history []domain.Candle, period int) (float64, bool) {
	if len(history) < period {
		return 0, false
	}
	seed := 0.0
	for _, c := range history[:period] {
		seed += c.Close
	}
	value := seed / float64(period)

	alpha := 2.0 / (float64(period) + 1)
	for _, c := range history[period:] {
		value = c.Close*alpha + value*(1-alpha)
	}
	if math.IsNaN(value) {
		return 0, false
	}
	return value, true
}
