package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

func mkCandles(closes []float64) []domain.Candle {
	base := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{
			BucketStart: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:        c,
			High:        c,
			Low:         c,
			Close:       c,
			Closed:      true,
		}
	}
	return out
}

func TestEMA_ShortSeries(t *testing.T) {
	_, ok := EMA([]float64{1, 2}, 3)
	assert.False(t, ok)

	_, ok = EMA(nil, 1)
	assert.False(t, ok)

	_, ok = EMA([]float64{1, 2, 3}, 0)
	assert.False(t, ok)
}

func TestEMA_SeededWithFirstValue(t *testing.T) {
	// Single value with period 1: EMA is the value itself.
	v, ok := EMA([]float64{42}, 1)
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	// Constant series: EMA stays at the constant regardless of period.
	v, ok = EMA([]float64{10, 10, 10, 10, 10}, 3)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestEMA_Recurrence(t *testing.T) {
	// period=3 -> k=0.5; seed=2, then 4, 6.
	// ema = 2; ema = 4*0.5 + 2*0.5 = 3; ema = 6*0.5 + 3*0.5 = 4.5
	v, ok := EMA([]float64{2, 4, 6}, 3)
	require.True(t, ok)
	assert.InDelta(t, 4.5, v, 1e-9)
}

func TestCompute_NeutralWhileWarmingUp(t *testing.T) {
	cfg := Config{ShortPeriod: 20, LongPeriod: 200, ATHTolerance: 0.001}

	// 50 candles: enough for the short EMA, not the long one.
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 5000 + float64(i)
	}
	state := Compute(cfg, mkCandles(closes))

	require.NotNil(t, state.EMA20)
	assert.Nil(t, state.EMA200)
	assert.Equal(t, domain.BiasNeutral, state.Bias)
}

func TestCompute_BullAndBearBias(t *testing.T) {
	cfg := Config{ShortPeriod: 3, LongPeriod: 5, ATHTolerance: 0.001}

	// Rising series: short EMA tracks recent values more tightly, so it
	// sits above the long EMA.
	rising := []float64{100, 101, 102, 103, 104, 105, 106, 107}
	state := Compute(cfg, mkCandles(rising))
	require.NotNil(t, state.EMA20)
	require.NotNil(t, state.EMA200)
	assert.Greater(t, *state.EMA20, *state.EMA200)
	assert.Equal(t, domain.BiasBull, state.Bias)

	falling := []float64{107, 106, 105, 104, 103, 102, 101, 100}
	state = Compute(cfg, mkCandles(falling))
	assert.Equal(t, domain.BiasBear, state.Bias)
}

func TestCompute_AtAllTimeHigh(t *testing.T) {
	cfg := Config{ShortPeriod: 2, LongPeriod: 3, ATHTolerance: 0.001}

	// Max high 5000; last close 4996 is within 0.1% (threshold 4995).
	near := mkCandles([]float64{4990, 5000, 4996})
	state := Compute(cfg, near)
	assert.True(t, state.AtAllTimeHigh)

	// Last close 4994 falls outside the tolerance band.
	away := mkCandles([]float64{4990, 5000, 4994})
	state = Compute(cfg, away)
	assert.False(t, state.AtAllTimeHigh)
}

func TestCompute_Empty(t *testing.T) {
	state := Compute(Config{ShortPeriod: 20, LongPeriod: 200}, nil)
	assert.Nil(t, state.EMA20)
	assert.Nil(t, state.EMA200)
	assert.Equal(t, domain.BiasNeutral, state.Bias)
	assert.False(t, state.AtAllTimeHigh)
}
