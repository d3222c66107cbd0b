// Package gather fetches historical candle data from remote market-data
// APIs into the local candle store.
package gather

import (
	"context"
	"fmt"
	"time"
)

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes the gathering job. It returns when the configured range
	// has been fetched or ctx is cancelled.
	Run(ctx context.Context) error
}

// DateRange is the half-open fetch window [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange builds a DateRange from a start date string, ending now.
func ParseDateRange(startDate string) (DateRange, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing start date %q: %w", startDate, err)
	}
	return DateRange{Start: start, End: time.Now().UTC()}, nil
}
