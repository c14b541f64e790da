package candles

import (
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Resample groups 1-minute bars into a higher timeframe. Input must be
// sorted ascending; output bars are marked closed. Used to seed the higher
// timeframe buffers from a historical 1-minute fetch.
func Resample(oneMin []domain.Candle, tf domain.Timeframe) []domain.Candle {
	var out []domain.Candle
	for _, bar := range oneMin {
		b := bucketStart(bar.BucketStart, tf)

		if n := len(out); n > 0 && out[n-1].BucketStart.Equal(b) {
			last := &out[n-1]
			if bar.High > last.High {
				last.High = bar.High
			}
			if bar.Low < last.Low {
				last.Low = bar.Low
			}
			last.Close = bar.Close
			last.Volume += bar.Volume
			continue
		}

		out = append(out, domain.Candle{
			BucketStart: b,
			Open:        bar.Open,
			High:        bar.High,
			Low:         bar.Low,
			Close:       bar.Close,
			Volume:      bar.Volume,
			Closed:      true,
		})
	}
	return out
}
