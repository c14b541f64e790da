package trend

import (
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Config holds the trend module parameters.
type Config struct {
	ShortPeriod  int     // e.g., 20
	LongPeriod   int     // e.g., 200
	ATHTolerance float64 // e.g., 0.001 for 0.1%
}

// State is the computed trend context for one evaluation cycle.
type State struct {
	EMA20  *float64 // nil while fewer than ShortPeriod closes exist
	EMA200 *float64 // nil while fewer than LongPeriod closes exist
	Bias   domain.Bias

	// AtAllTimeHigh is true when the latest close is within ATHTolerance of
	// the maximum high in the retained primary-timeframe history. This is a
	// rolling-window approximation of the all-time high, bounded by the
	// candle retention cap, not a literal unbounded-history maximum.
	AtAllTimeHigh bool
}

// EMA computes an exponential moving average over the full series, seeded
// with the first value, with smoothing constant k = 2/(period+1). Returns
// ok=false while the series is shorter than the period; the result is
// deterministic for a given input.
func EMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	k := 2.0 / float64(period+1)
	ema := values[0]
	for i := 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
	}
	return ema, true
}

// Compute derives the EMA pair, bias and the at-high flag from the primary
// timeframe candles. Bias is bull iff ema20 > ema200, bear iff ema20 <
// ema200, and neutral only while either EMA is not yet computable, so
// "false" and "not yet known" stay distinct.
func Compute(cfg Config, primary []domain.Candle) State {
	state := State{Bias: domain.BiasNeutral}
	if len(primary) == 0 {
		return state
	}

	closes := make([]float64, len(primary))
	for i, c := range primary {
		closes[i] = c.Close
	}

	if v, ok := EMA(closes, cfg.ShortPeriod); ok {
		state.EMA20 = &v
	}
	if v, ok := EMA(closes, cfg.LongPeriod); ok {
		state.EMA200 = &v
	}

	if state.EMA20 != nil && state.EMA200 != nil {
		switch {
		case *state.EMA20 > *state.EMA200:
			state.Bias = domain.BiasBull
		case *state.EMA20 < *state.EMA200:
			state.Bias = domain.BiasBear
		}
	}

	maxHigh := primary[0].High
	for _, c := range primary[1:] {
		if c.High > maxHigh {
			maxHigh = c.High
		}
	}
	tolerance := cfg.ATHTolerance
	if tolerance <= 0 {
		tolerance = 0.001
	}
	last := closes[len(closes)-1]
	state.AtAllTimeHigh = last >= maxHigh*(1-tolerance)

	return state
}
