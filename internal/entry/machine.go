// Package entry implements the staged entry state machine
// (idle -> armed -> entered) that turns session-level sweeps into
// directional option entries.
package entry

import (
	"math"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Config holds the entry machine parameters.
type Config struct {
	ArmTimeout      time.Duration // pending entries older than this are invalidated
	MaxTradesPerDay int           // 0 means unlimited
}

// Input is the full evaluation context for one cycle. The caller owns all
// of it; the machine itself is stateless.
type Input struct {
	Price         *float64
	InWindow      bool
	Bias          domain.Bias
	AtHigh        bool
	Sweeps        domain.SweepFlags
	OneMin        []domain.Candle
	OpenTrade     *domain.LiveTrade
	Pending       *domain.PendingEntry
	CooldownUntil time.Time
	TradesToday   int
	Now           time.Time
}

// Machine evaluates entry conditions. It never mutates shared state; the
// returned decision carries the next pending entry (or nil) and the caller
// applies it.
type Machine struct {
	cfg Config
}

func New(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// Evaluate runs one cycle of the state machine. Decision.Armed is the
// pending entry to carry into the next cycle; Decision.BlockedBy lists
// every gate that failed, in check order, for the snapshot trace.
func (m *Machine) Evaluate(in Input) domain.EntryDecision {
	d := domain.EntryDecision{Armed: in.Pending}

	if in.Price == nil || math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) {
		d.BlockedBy = append(d.BlockedBy, "no price")
	}
	if in.OpenTrade != nil {
		d.BlockedBy = append(d.BlockedBy, "position open")
	}
	if !in.InWindow {
		d.BlockedBy = append(d.BlockedBy, "outside trading window")
	}
	if in.Now.Before(in.CooldownUntil) {
		d.BlockedBy = append(d.BlockedBy, "cooldown")
	}
	if m.cfg.MaxTradesPerDay > 0 && in.TradesToday >= m.cfg.MaxTradesPerDay {
		d.BlockedBy = append(d.BlockedBy, "daily trade cap reached")
	}
	if len(d.BlockedBy) > 0 {
		// Hard gates failed: any pending entry is stale, drop it.
		d.Armed = nil
		d.Reason = d.BlockedBy[0]
		return d
	}

	if in.Pending != nil {
		return m.evaluateArmed(in, d)
	}
	return m.evaluateIdle(in, d)
}

// evaluateIdle checks the arming gates: a directional bias plus a
// qualifying sweep of a session level.
func (m *Machine) evaluateIdle(in Input, d domain.EntryDecision) domain.EntryDecision {
	if in.Bias == domain.BiasNeutral {
		d.BlockedBy = append(d.BlockedBy, "neutral trend")
		d.Reason = "neutral trend"
		return d
	}

	side, ok := qualifyingSide(in.Bias, in.AtHigh, in.Sweeps)
	if !ok {
		d.BlockedBy = append(d.BlockedBy, "no qualifying sweep")
		d.Reason = "no qualifying sweep"
		return d
	}

	d.Armed = &domain.PendingEntry{Side: side, ArmedAt: in.Now}
	d.Reason = "armed, awaiting confirmation"
	d.BlockedBy = append(d.BlockedBy, "awaiting confirmation")
	return d
}

// evaluateArmed waits for a 1m confirmation candle in the pending
// direction, or invalidates the setup after the arm timeout.
func (m *Machine) evaluateArmed(in Input, d domain.EntryDecision) domain.EntryDecision {
	if m.cfg.ArmTimeout > 0 && in.Now.Sub(in.Pending.ArmedAt) >= m.cfg.ArmTimeout {
		d.Armed = nil
		d.Reason = "setup invalidated, arm timeout"
		d.BlockedBy = append(d.BlockedBy, "arm timeout")
		return d
	}

	if len(in.OneMin) < 2 {
		d.Reason = "armed, awaiting confirmation"
		d.BlockedBy = append(d.BlockedBy, "awaiting confirmation")
		return d
	}

	last := in.OneMin[len(in.OneMin)-1]
	prev := in.OneMin[len(in.OneMin)-2]

	confirmed := false
	switch in.Pending.Side {
	case domain.Long:
		confirmed = last.Close > last.Open && last.Close > prev.High
	case domain.Short:
		confirmed = last.Close < last.Open && last.Close < prev.Low
	}
	if !confirmed {
		d.Reason = "armed, awaiting confirmation"
		d.BlockedBy = append(d.BlockedBy, "awaiting confirmation")
		return d
	}

	d.ShouldEnter = true
	d.Direction = in.Pending.Side.ToDirection()
	d.Armed = nil
	d.Reason = "confirmation candle"
	return d
}

// qualifyingSide maps bias, the at-high flag and the sweep flags to an
// entry side. With bullish bias the normal setup is a swept session low;
// at the highs that flips to a swept session high (stop run above before
// continuation). Bear is the mirror image.
func qualifyingSide(bias domain.Bias, atHigh bool, sweeps domain.SweepFlags) (domain.Side, bool) {
	switch bias {
	case domain.BiasBull:
		if atHigh {
			if sweeps.AnyHigh() {
				return domain.Long, true
			}
		} else if sweeps.AnyLow() {
			return domain.Long, true
		}
	case domain.BiasBear:
		if atHigh {
			if sweeps.AnyLow() {
				return domain.Short, true
			}
		} else if sweeps.AnyHigh() {
			return domain.Short, true
		}
	}
	return "", false
}
