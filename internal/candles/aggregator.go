package candles

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Default retention per timeframe. 1m needs >= 24h of history (1440 buckets)
// plus buffer so the Asia/London windows always have data; the higher
// timeframes only feed the EMA pair and can stay smaller.
var defaultMaxByTF = map[domain.Timeframe]int{
	domain.TF1m:  3000,
	domain.TF3m:  1200,
	domain.TF5m:  1200,
	domain.TF15m: 800,
	domain.TF30m: 800,
	domain.TF4h:  500,
}

// Aggregator converts a stream of price ticks (and seeded historical bars)
// into per-timeframe candle buffers. Within each buffer bucket starts are
// strictly increasing and aligned to the timeframe period, and at most one
// candle is open (the last one).
//
// Safe for concurrent use: the polling loop seeds history while the
// evaluation loop reads and ticks.
type Aggregator struct {
	mu          sync.Mutex
	buffers     map[domain.Timeframe][]domain.Candle
	lastUpdated map[domain.Timeframe]time.Time
	maxByTF     map[domain.Timeframe]int
}

// New creates an aggregator with empty buffers for every tracked timeframe.
func New() *Aggregator {
	a := &Aggregator{
		buffers:     make(map[domain.Timeframe][]domain.Candle, len(domain.Timeframes)),
		lastUpdated: make(map[domain.Timeframe]time.Time, len(domain.Timeframes)),
		maxByTF:     defaultMaxByTF,
	}
	for _, tf := range domain.Timeframes {
		a.buffers[tf] = nil
	}
	return a
}

// bucketStart aligns ts down to the start of its bucket for the timeframe.
func bucketStart(ts time.Time, tf domain.Timeframe) time.Time {
	return ts.Truncate(tf.Duration())
}

// UpdateFromTick applies one price observation to every timeframe buffer.
// Malformed prices (NaN, ±Inf) are rejected; ticks whose bucket is earlier
// than the last candle's bucket are discarded so closed candles never change.
func (a *Aggregator) UpdateFromTick(price float64, ts time.Time) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, tf := range domain.Timeframes {
		b := bucketStart(ts, tf)
		buf := a.buffers[tf]

		if len(buf) == 0 {
			a.buffers[tf] = append(buf, domain.Candle{
				BucketStart: b,
				Open:        price, High: price, Low: price, Close: price,
			})
			a.lastUpdated[tf] = ts
			continue
		}

		last := &buf[len(buf)-1]
		switch {
		case last.BucketStart.Equal(b):
			// Same bucket: always update, reopening if it had been
			// erroneously marked closed.
			last.Closed = false
			if price > last.High {
				last.High = price
			}
			if price < last.Low {
				last.Low = price
			}
			last.Close = price
			a.lastUpdated[tf] = ts

		case b.After(last.BucketStart):
			last.Closed = true
			buf = append(buf, domain.Candle{
				BucketStart: b,
				Open:        price, High: price, Low: price, Close: price,
			})
			a.buffers[tf] = capBuffer(buf, a.maxByTF[tf])
			a.lastUpdated[tf] = ts

		default:
			// Out-of-order tick: keep the monotonic series intact.
		}
	}
}

// SeedHistory bulk-loads historical closed bars into one timeframe's buffer.
// Bars are sorted ascending and deduplicated by bucket (last wins), capped
// to the retention limit. Every bar is marked closed except the newest one
// when it belongs to the bucket containing now, which is left open so
// subsequent ticks update it instead of duplicating it.
func (a *Aggregator) SeedHistory(tf domain.Timeframe, bars []domain.Candle, now time.Time) {
	if len(bars) == 0 {
		return
	}

	sorted := make([]domain.Candle, 0, len(bars))
	for _, bar := range bars {
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
			continue
		}
		sorted = append(sorted, bar)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BucketStart.Before(sorted[j].BucketStart)
	})

	deduped := sorted[:0]
	for _, bar := range sorted {
		bar.BucketStart = bucketStart(bar.BucketStart, tf)
		bar.Closed = true
		if n := len(deduped); n > 0 && deduped[n-1].BucketStart.Equal(bar.BucketStart) {
			deduped[n-1] = bar
			continue
		}
		deduped = append(deduped, bar)
	}
	deduped = capBuffer(deduped, a.maxByTF[tf])

	if n := len(deduped); n > 0 && deduped[n-1].BucketStart.Equal(bucketStart(now, tf)) {
		deduped[n-1].Closed = false
	}

	a.mu.Lock()
	a.buffers[tf] = deduped
	a.lastUpdated[tf] = now
	a.mu.Unlock()
}

// Candles returns a copy of the buffer for a timeframe.
func (a *Aggregator) Candles(tf domain.Timeframe) []domain.Candle {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf := a.buffers[tf]
	out := make([]domain.Candle, len(buf))
	copy(out, buf)
	return out
}

// LastUpdated returns the timestamp of the last tick or seed applied to a
// timeframe, for staleness display. Zero time when never updated.
func (a *Aggregator) LastUpdated(tf domain.Timeframe) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastUpdated[tf]
}

func capBuffer(buf []domain.Candle, max int) []domain.Candle {
	if max <= 0 || len(buf) <= max {
		return buf
	}
	return buf[len(buf)-max:]
}
