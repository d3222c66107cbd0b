package builtins

import "rewind/internal/strategy"

// RegisterAll registers every built-in strategy with the given registry.
func RegisterAll(r *strategy.Registry) {
	r.Register("rsi-reversal", func() strategy.Strategy { return NewRSIReversal() })
	r.Register("sma-cross", func() strategy.Strategy { return NewSMACross("sma_10", "sma_20") })
}
