package candles

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

func TestUpdateFromTick_BucketProperties(t *testing.T) {
	a := New()
	base := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	// Three ticks inside one minute, then one in the next minute.
	a.UpdateFromTick(5000.0, base)
	a.UpdateFromTick(5004.5, base.Add(20*time.Second))
	a.UpdateFromTick(4998.0, base.Add(40*time.Second))
	a.UpdateFromTick(5001.0, base.Add(61*time.Second))

	oneMin := a.Candles(domain.TF1m)
	require.Len(t, oneMin, 2)

	first := oneMin[0]
	assert.Equal(t, base, first.BucketStart)
	assert.Equal(t, 5000.0, first.Open)
	assert.Equal(t, 5004.5, first.High)
	assert.Equal(t, 4998.0, first.Low)
	assert.Equal(t, 4998.0, first.Close)
	assert.True(t, first.Closed, "previous candle must be closed once a later bucket starts")

	second := oneMin[1]
	assert.Equal(t, base.Add(time.Minute), second.BucketStart)
	assert.False(t, second.Closed)
	assert.Equal(t, 5001.0, second.Open)

	// All four ticks land in the same 5m bucket.
	fiveMin := a.Candles(domain.TF5m)
	require.Len(t, fiveMin, 1)
	assert.Equal(t, 5004.5, fiveMin[0].High)
	assert.Equal(t, 4998.0, fiveMin[0].Low)
	assert.Equal(t, 5001.0, fiveMin[0].Close)
}

func TestUpdateFromTick_OutOfOrderDiscarded(t *testing.T) {
	a := New()
	base := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	a.UpdateFromTick(5000.0, base)
	a.UpdateFromTick(5002.0, base.Add(time.Minute))
	before := a.Candles(domain.TF1m)

	// A tick for an earlier bucket must not alter any existing candle.
	a.UpdateFromTick(9999.0, base.Add(-time.Minute))
	after := a.Candles(domain.TF1m)

	assert.Equal(t, before, after)
}

func TestUpdateFromTick_RejectsMalformedPrice(t *testing.T) {
	a := New()
	base := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	a.UpdateFromTick(5000.0, base)
	a.UpdateFromTick(math.NaN(), base.Add(time.Second))
	a.UpdateFromTick(math.Inf(1), base.Add(2*time.Second))

	oneMin := a.Candles(domain.TF1m)
	require.Len(t, oneMin, 1)
	assert.Equal(t, 5000.0, oneMin[0].High)
	assert.Equal(t, 5000.0, oneMin[0].Close)
}

func TestSeedHistory_SortsDedupesAndReopensCurrentBucket(t *testing.T) {
	a := New()
	now := time.Date(2025, 3, 10, 14, 30, 25, 0, time.UTC)
	cur := now.Truncate(time.Minute)

	bars := []domain.Candle{
		{BucketStart: cur, Open: 5002, High: 5003, Low: 5001, Close: 5002.5},
		{BucketStart: cur.Add(-2 * time.Minute), Open: 5000, High: 5001, Low: 4999, Close: 5000.5},
		{BucketStart: cur.Add(-time.Minute), Open: 5000.5, High: 5002, Low: 5000, Close: 5001},
		// Duplicate bucket: the later occurrence wins.
		{BucketStart: cur.Add(-2 * time.Minute), Open: 5000, High: 5001.5, Low: 4999, Close: 5000.6},
	}
	a.SeedHistory(domain.TF1m, bars, now)

	got := a.Candles(domain.TF1m)
	require.Len(t, got, 3)
	assert.Equal(t, 5001.5, got[0].High)
	assert.True(t, got[0].Closed)
	assert.True(t, got[1].Closed)
	assert.False(t, got[2].Closed, "bar in the current bucket must be left open")
}

func TestSeedHistory_ThenTickUpdatesNotDuplicates(t *testing.T) {
	a := New()
	now := time.Date(2025, 3, 10, 14, 30, 25, 0, time.UTC)
	cur := now.Truncate(time.Minute)

	a.SeedHistory(domain.TF1m, []domain.Candle{
		{BucketStart: cur.Add(-time.Minute), Open: 5000, High: 5001, Low: 4999, Close: 5000.5},
		{BucketStart: cur, Open: 5000.5, High: 5001, Low: 5000, Close: 5000.8},
	}, now)

	// Tick in the same bucket as the last seeded bar.
	a.UpdateFromTick(5005.0, now.Add(5*time.Second))

	got := a.Candles(domain.TF1m)
	require.Len(t, got, 2)
	assert.Equal(t, 5005.0, got[1].High)
	assert.Equal(t, 5005.0, got[1].Close)
	assert.Equal(t, 5000.5, got[1].Open, "open of the seeded bar must be preserved")
}

func TestLastUpdated(t *testing.T) {
	a := New()
	assert.True(t, a.LastUpdated(domain.TF1m).IsZero())

	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	a.UpdateFromTick(5000.0, ts)
	assert.Equal(t, ts, a.LastUpdated(domain.TF1m))
	assert.Equal(t, ts, a.LastUpdated(domain.TF4h))
}
