// Package strategy defines the decision contract consumed by the backtest
// engine and provides a Registry for managing the available strategies.
package strategy

import (
	"sort"

	"rewind/internal/domain"
	"rewind/internal/indicator"
)

// Strategy is the capability contract a backtest run drives. OnCandle is
// called once per candle, in timestamp order, with the current candle and
// the indicator snapshot computed from history up to and including it. A
// strategy may hold internal state across calls (entry tracking, crossover
// memory) but is never shown anything beyond the candle passed to it.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// OnCandle decides the action for the current candle.
	OnCandle(c domain.Candle, ind indicator.Snapshot) domain.Signal
}

// Factory builds a fresh Strategy instance. Strategies are stateful, so
// every run gets its own instance; sharing one across runs would leak entry
// state between them.
type Factory func() Strategy

// Registry holds a named collection of strategy factories for lookup and
// enumeration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a strategy factory to the registry under the given name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New instantiates the named strategy. The second return value indicates
// whether the strategy was found.
func (r *Registry) New(name string) (Strategy, bool) {
	f, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
