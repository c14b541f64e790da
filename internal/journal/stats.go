// Package journal computes aggregate statistics over closed trades.
package journal

import (
	"sort"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Stats holds aggregate metrics for a set of journal entries. All point
// figures are directional price points, not dollars.
type Stats struct {
	TotalTrades     int
	Wins            int
	Losses          int
	Breakevens      int
	WinRate         float64
	TotalPnLPoints  float64
	AverageWin      float64
	AverageLoss     float64
	ProfitFactor    float64
	MaxWinStreak    int
	MaxLossStreak   int
	AverageDuration time.Duration
}

// Compute derives Stats from journal entries. Entries are processed in
// close-time order; the input slice is not modified. Breakevens reset both
// streak counters.
func Compute(entries []domain.JournalEntry) Stats {
	var stats Stats
	if len(entries) == 0 {
		return stats
	}

	sorted := make([]domain.JournalEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ClosedAt.Before(sorted[j].ClosedAt)
	})

	var winStreak, lossStreak int
	var grossProfit, grossLoss float64
	var totalDuration time.Duration

	for _, e := range sorted {
		stats.TotalTrades++
		stats.TotalPnLPoints += e.PnLPoints
		totalDuration += e.ClosedAt.Sub(e.OpenedAt)

		switch {
		case e.PnLPoints > 0:
			stats.Wins++
			winStreak++
			lossStreak = 0
			grossProfit += e.PnLPoints
		case e.PnLPoints < 0:
			stats.Losses++
			lossStreak++
			winStreak = 0
			grossLoss += -e.PnLPoints
		default:
			stats.Breakevens++
			winStreak = 0
			lossStreak = 0
		}

		if winStreak > stats.MaxWinStreak {
			stats.MaxWinStreak = winStreak
		}
		if lossStreak > stats.MaxLossStreak {
			stats.MaxLossStreak = lossStreak
		}
	}

	stats.WinRate = float64(stats.Wins) / float64(stats.TotalTrades)
	if stats.Wins > 0 {
		stats.AverageWin = grossProfit / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AverageLoss = -grossLoss / float64(stats.Losses)
	}
	if grossLoss > 0 {
		stats.ProfitFactor = grossProfit / grossLoss
	}
	stats.AverageDuration = totalDuration / time.Duration(stats.TotalTrades)

	return stats
}
