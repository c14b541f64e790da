package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

func mustClock(t *testing.T) *Clock {
	t.Helper()
	c, err := NewClock("America/New_York")
	require.NoError(t, err)
	return c
}

func minuteCandle(ts time.Time, high, low float64) domain.Candle {
	return domain.Candle{
		BucketStart: ts,
		Open:        (high + low) / 2,
		High:        high,
		Low:         low,
		Close:       (high + low) / 2,
		Closed:      true,
	}
}

func TestBuildLevels_AsiaCrossesMidnight(t *testing.T) {
	clock := mustClock(t)
	engine := NewEngine(clock, DefaultWindows(), 0)
	ny := clock.Location()

	// Candles at 23:00 ET one day and 01:00 ET the next must group into the
	// same Asia session instance, anchored to the first day.
	evening := time.Date(2025, 3, 11, 23, 0, 0, 0, ny)
	morning := time.Date(2025, 3, 12, 1, 0, 0, 0, ny)
	ref := time.Date(2025, 3, 12, 10, 0, 0, 0, ny)

	candles := []domain.Candle{
		minuteCandle(evening, 5010, 5000),
		minuteCandle(morning, 5025, 4990),
		minuteCandle(ref, 5015, 5012),
	}
	levels := engine.BuildLevels(candles, ref)

	require.True(t, levels.Asia.Complete())
	assert.Equal(t, 5025.0, *levels.Asia.High)
	assert.Equal(t, 4990.0, *levels.Asia.Low)
	assert.Equal(t, "2025-03-12", levels.DayKey)
}

func TestBuildLevels_LondonAndNY(t *testing.T) {
	clock := mustClock(t)
	engine := NewEngine(clock, DefaultWindows(), 0)
	ny := clock.Location()

	london := time.Date(2025, 6, 3, 3, 30, 0, 0, ny)
	nySess := time.Date(2025, 6, 3, 10, 0, 0, 0, ny)
	ref := time.Date(2025, 6, 3, 10, 30, 0, 0, ny)

	candles := []domain.Candle{
		minuteCandle(london, 5105, 5095),
		minuteCandle(nySess, 5120, 5100),
		minuteCandle(ref, 5118, 5110),
	}
	levels := engine.BuildLevels(candles, ref)

	require.True(t, levels.London.Complete())
	assert.Equal(t, 5105.0, *levels.London.High)
	assert.Equal(t, 5095.0, *levels.London.Low)

	require.True(t, levels.NY.Complete())
	assert.Equal(t, 5120.0, *levels.NY.High)
	assert.Equal(t, 5100.0, *levels.NY.Low)

	// No Asia candles: both sides stay nil, never zero.
	assert.False(t, levels.Asia.Complete())
	assert.Nil(t, levels.Asia.High)
	assert.Nil(t, levels.Asia.Low)
}

func TestBuildLevels_EmptyBuffer(t *testing.T) {
	clock := mustClock(t)
	engine := NewEngine(clock, DefaultWindows(), 0)

	levels := engine.BuildLevels(nil, time.Now())
	assert.Empty(t, levels.DayKey)
	assert.False(t, levels.Asia.Complete())
	assert.False(t, levels.London.Complete())
	assert.False(t, levels.NY.Complete())
}

func TestBuildLevels_DSTTransition(t *testing.T) {
	clock := mustClock(t)
	engine := NewEngine(clock, DefaultWindows(), 0)
	ny := clock.Location()

	// US DST starts 2025-03-09 at 02:00 ET. A 01:30 ET candle that morning
	// still belongs to the Asia window anchored on the 8th, and the London
	// window opens at the correct wall-clock time on the 9th.
	preJump := time.Date(2025, 3, 9, 1, 30, 0, 0, ny)
	londonAfter := time.Date(2025, 3, 9, 3, 0, 0, 0, ny)
	ref := time.Date(2025, 3, 9, 10, 0, 0, 0, ny)

	candles := []domain.Candle{
		minuteCandle(preJump, 5050, 5040),
		minuteCandle(londonAfter, 5060, 5045),
		minuteCandle(ref, 5055, 5052),
	}
	levels := engine.BuildLevels(candles, ref)

	require.True(t, levels.Asia.Complete())
	assert.Equal(t, 5050.0, *levels.Asia.High)
	require.True(t, levels.London.Complete())
	assert.Equal(t, 5060.0, *levels.London.High)
}

func TestCurrentSession(t *testing.T) {
	clock := mustClock(t)
	engine := NewEngine(clock, DefaultWindows(), 0)
	ny := clock.Location()

	tests := []struct {
		name string
		at   time.Time
		want domain.SessionID
	}{
		{"NY open", time.Date(2025, 6, 3, 9, 30, 0, 0, ny), domain.SessionNY},
		{"NY end is exclusive", time.Date(2025, 6, 3, 11, 30, 0, 0, ny), domain.SessionOff},
		{"London", time.Date(2025, 6, 3, 3, 0, 0, 0, ny), domain.SessionLondon},
		{"Asia evening", time.Date(2025, 6, 3, 22, 0, 0, 0, ny), domain.SessionAsia},
		{"Asia after midnight", time.Date(2025, 6, 3, 1, 0, 0, 0, ny), domain.SessionAsia},
		{"off hours", time.Date(2025, 6, 3, 7, 0, 0, 0, ny), domain.SessionOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.CurrentSession(tt.at))
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{StartMin: 20 * 60, EndMin: 2 * 60}
	assert.True(t, w.Crossing())
	assert.True(t, w.Contains(21*60))
	assert.True(t, w.Contains(1*60))
	assert.False(t, w.Contains(2*60))
	assert.False(t, w.Contains(12*60))

	day := Window{StartMin: 9*60 + 30, EndMin: 11*60 + 30}
	assert.False(t, day.Crossing())
	assert.True(t, day.Contains(9*60+30))
	assert.False(t, day.Contains(11*60+30))
}

func TestMinutesOfDay(t *testing.T) {
	m, err := MinutesOfDay("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = MinutesOfDay("25:00")
	assert.Error(t, err)
	_, err = MinutesOfDay("bogus")
	assert.Error(t, err)
}
