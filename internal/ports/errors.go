package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Market Data Feed Errors
	ErrFeedUnavailable      = errors.New("market data feed is unavailable")
	ErrRateLimited          = errors.New("feed rate limit exceeded")
	ErrAuthenticationFailed = errors.New("feed authentication failed (check API key)")
	ErrNoData               = errors.New("feed returned no data for the requested range")
	ErrContractUnresolved   = errors.New("no active contract covers the requested day")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")

	// Trade Lifecycle Errors
	ErrPositionOpen   = errors.New("a position is already open")
	ErrNoOpenPosition = errors.New("no open position")
)
