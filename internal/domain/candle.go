package domain

import "time"

// Timeframe identifies one of the tracked candle periods.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF3m  Timeframe = "3m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF4h  Timeframe = "4h"
)

// Timeframes lists every tracked timeframe, shortest first.
var Timeframes = []Timeframe{TF1m, TF3m, TF5m, TF15m, TF30m, TF4h}

// Duration returns the bucket length of the timeframe.
// Unknown timeframes return 0.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF1m:
		return time.Minute
	case TF3m:
		return 3 * time.Minute
	case TF5m:
		return 5 * time.Minute
	case TF15m:
		return 15 * time.Minute
	case TF30m:
		return 30 * time.Minute
	case TF4h:
		return 4 * time.Hour
	}
	return 0
}

// Candle represents a single OHLC candle.
type Candle struct {
	BucketStart time.Time // Start time of the bucket, aligned to the timeframe period
	Open        float64   // First traded price in the bucket
	High        float64   // Highest traded price in the bucket
	Low         float64   // Lowest traded price in the bucket
	Close       float64   // Latest traded price in the bucket
	Volume      float64   // Traded volume (0 when the feed doesn't supply it)
	Closed      bool      // True once a later bucket has started; the candle never changes again
}
