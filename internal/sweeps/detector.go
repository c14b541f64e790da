// Package sweeps detects liquidity sweeps of session levels.
//
// Two strategies exist with different false-positive characteristics:
//
//   - Flags uses the 2-candle through-and-back pattern and is the only
//     detection the entry state machine consumes ("swept and reclaimed").
//   - Instant flags the current price strictly beyond a level and is meant
//     for live dashboards only; a price pressing a level is not a reclaim.
package sweeps

import (
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// patternWindow bounds the scan to the most recent 1-minute candles.
const patternWindow = 50

// Flags computes the pattern-based sweep flags for every session level.
// A nil level always yields false: missing data is never treated as swept.
func Flags(levels domain.SessionLevels, oneMin []domain.Candle) domain.SweepFlags {
	return domain.SweepFlags{
		AsiaHigh:   sweptHigh(levels.Asia.High, oneMin),
		AsiaLow:    sweptLow(levels.Asia.Low, oneMin),
		LondonHigh: sweptHigh(levels.London.High, oneMin),
		LondonLow:  sweptLow(levels.London.Low, oneMin),
		NYHigh:     sweptHigh(levels.NY.High, oneMin),
		NYLow:      sweptLow(levels.NY.Low, oneMin),
	}
}

// sweptHigh scans for a two-candle sequence where candle A's wick trades
// above the level while its open is still below, and the following candle B
// closes back below the level.
func sweptHigh(level *float64, candles []domain.Candle) bool {
	if level == nil || len(candles) < 2 {
		return false
	}
	window := tail(candles, patternWindow)

	for i := 0; i < len(window)-1; i++ {
		a, b := window[i], window[i+1]
		tradedAbove := a.High > *level && a.Open < *level
		closedBackBelow := b.Close < *level
		if tradedAbove && closedBackBelow {
			return true
		}
	}
	return false
}

// sweptLow is the mirror image: wick below the level with the open above,
// then a close back above.
func sweptLow(level *float64, candles []domain.Candle) bool {
	if level == nil || len(candles) < 2 {
		return false
	}
	window := tail(candles, patternWindow)

	for i := 0; i < len(window)-1; i++ {
		a, b := window[i], window[i+1]
		tradedBelow := a.Low < *level && a.Open > *level
		closedBackAbove := b.Close > *level
		if tradedBelow && closedBackAbove {
			return true
		}
	}
	return false
}

// Instant reports whether the current price is strictly beyond either side
// of a session range. Display-only; see the package comment.
func Instant(price float64, rng domain.SessionRange) (sweptHigh, sweptLow bool) {
	if rng.High == nil || rng.Low == nil {
		return false, false
	}
	return price > *rng.High, price < *rng.Low
}

func tail(candles []domain.Candle, n int) []domain.Candle {
	if len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}
