// Package exit evaluates open positions against the configured exit ladder.
package exit

import (
	"fmt"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Config holds the exit thresholds. TakeProfit and StopLoss are expressed
// in positive price points.
type Config struct {
	TakeProfitPoints float64
	StopLossPoints   float64
	MaxHoldDuration  time.Duration
}

// Evaluator applies the exit conditions in a fixed priority order:
// session end, take profit, stop loss, trend flip, time limit. The first
// match wins; later conditions are not consulted.
type Evaluator struct {
	cfg Config
}

func New(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate checks one open position at the current price. inWindow is
// whether the trading session is still open; bias is the current trend
// classification. Always returns a decision; PnLPoints is populated even
// when holding.
func (e *Evaluator) Evaluate(pos *domain.LiveTrade, price float64, bias domain.Bias, inWindow bool, now time.Time) domain.ExitDecision {
	pnl := pos.PnLPoints(price)
	d := domain.ExitDecision{PnLPoints: pnl}

	if !inWindow {
		d.ShouldExit = true
		d.Reason = domain.CloseReasonSessionEnd
		d.Message = "session over, closing position"
		return d
	}

	if e.cfg.TakeProfitPoints > 0 && pnl >= e.cfg.TakeProfitPoints {
		d.ShouldExit = true
		d.Reason = domain.CloseReasonTakeProfit
		d.Message = fmt.Sprintf("take profit hit at %+.2f points", pnl)
		return d
	}

	if e.cfg.StopLossPoints > 0 && pnl <= -e.cfg.StopLossPoints {
		d.ShouldExit = true
		d.Reason = domain.CloseReasonStopLoss
		d.Message = fmt.Sprintf("stop loss hit at %+.2f points", pnl)
		return d
	}

	if opposes(pos.Direction, bias) {
		d.ShouldExit = true
		d.Reason = domain.CloseReasonTrendFlip
		d.Message = fmt.Sprintf("trend flipped to %s against %s position", bias, pos.Direction)
		return d
	}

	if e.cfg.MaxHoldDuration > 0 && now.Sub(pos.OpenedAt) >= e.cfg.MaxHoldDuration {
		d.ShouldExit = true
		d.Reason = domain.CloseReasonTimeLimit
		d.Message = "max hold duration reached"
		return d
	}

	d.Message = fmt.Sprintf("holding, %+.2f points", pnl)
	return d
}

// opposes reports whether the bias explicitly contradicts the position
// direction. A neutral bias never forces an exit.
func opposes(dir domain.Direction, bias domain.Bias) bool {
	switch dir {
	case domain.Call:
		return bias == domain.BiasBear
	case domain.Put:
		return bias == domain.BiasBull
	}
	return false
}
