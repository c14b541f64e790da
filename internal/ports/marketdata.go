package ports

import (
	"context"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// MarketDataClient defines the interface for the market data collaborator.
// The core polls it for the latest price and seeds candle buffers from its
// historical bars; it never blocks the evaluation cycle.
type MarketDataClient interface {
	// LastPrice retrieves the most recent traded price for a contract ticker.
	LastPrice(ctx context.Context, ticker string) (float64, error)

	// Bars retrieves historical 1-minute OHLC bars for a contract ticker in
	// [from, to), sorted ascending. Bars are returned as closed candles.
	Bars(ctx context.Context, ticker string, from, to time.Time) ([]domain.Candle, error)

	// ResolveContract maps a calendar day to the active futures contract
	// ticker for a product code (e.g., "ES"). Synthetic/placeholder tickers
	// are rejected; returns ErrContractUnresolved when no real contract's
	// active range covers the day.
	ResolveContract(ctx context.Context, productCode string, day time.Time) (string, error)
}
