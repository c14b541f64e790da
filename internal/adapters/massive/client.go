// Package massive implements ports.MarketDataClient against the Massive
// futures REST API (aggregates and contract metadata).
package massive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/ports"
)

const defaultBaseURL = "https://api.massive.com"

// Real ES contract tickers: product code + month letter + single year digit.
// The year digit 0 is a synthetic root instrument, not a tradable contract.
var (
	realContractRe = regexp.MustCompile(`^ES[FGHJKMNQUVXZ]\d$`)
	syntheticRe    = regexp.MustCompile(`^ES[FGHJKMNQUVXZ]0$`)
)

// Client implements ports.MarketDataClient using the Massive REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     ports.Logger
}

// Config holds configuration specific to the Massive client adapter.
type Config struct {
	APIKey  string
	BaseURL string // Defaults to the production API
	Timeout time.Duration
	Logger  ports.Logger
}

// New creates a new Massive client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Massive client")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Massive client: %w", ports.ErrConfigurationError)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}, nil
}

// rawBar tolerates the timestamp and OHLC field aliases Massive payloads
// use across endpoints (window_start/t/ts/time, o/open, ...). Timestamps
// are nanoseconds since epoch.
type rawBar struct {
	WindowStart *int64   `json:"window_start"`
	T           *int64   `json:"t"`
	TS          *int64   `json:"ts"`
	Time        *int64   `json:"time"`
	O           *float64 `json:"o"`
	Open        *float64 `json:"open"`
	H           *float64 `json:"h"`
	High        *float64 `json:"high"`
	L           *float64 `json:"l"`
	Low         *float64 `json:"low"`
	C           *float64 `json:"c"`
	Close       *float64 `json:"close"`
	V           *float64 `json:"v"`
	Volume      *float64 `json:"volume"`
}

func firstInt64(ptrs ...*int64) (int64, bool) {
	for _, p := range ptrs {
		if p != nil {
			return *p, true
		}
	}
	return 0, false
}

func firstFloat(ptrs ...*float64) (float64, bool) {
	for _, p := range ptrs {
		if p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) {
			return *p, true
		}
	}
	return 0, false
}

// normalize converts a raw payload bar into a closed domain candle.
// Returns false when any required field is missing or non-finite.
func (b rawBar) normalize() (domain.Candle, bool) {
	ns, ok := firstInt64(b.WindowStart, b.T, b.TS, b.Time)
	if !ok {
		return domain.Candle{}, false
	}
	o, okO := firstFloat(b.O, b.Open)
	h, okH := firstFloat(b.H, b.High)
	l, okL := firstFloat(b.L, b.Low)
	c, okC := firstFloat(b.C, b.Close)
	if !okO || !okH || !okL || !okC {
		return domain.Candle{}, false
	}
	v, _ := firstFloat(b.V, b.Volume)

	return domain.Candle{
		BucketStart: time.Unix(0, ns).UTC(),
		Open:        o,
		High:        h,
		Low:         l,
		Close:       c,
		Volume:      v,
		Closed:      true,
	}, true
}

type aggsResponse struct {
	Results []rawBar `json:"results"`
}

type rawContract struct {
	Ticker      string `json:"ticker"`
	Type        string `json:"type"`
	ActiveStart string `json:"active_start"`
	ActiveEnd   string `json:"active_end"`
	FirstTrade  string `json:"first_trade_date"`
	LastTrade   string `json:"last_trade_date"`
}

type contractsResponse struct {
	Results []rawContract `json:"results"`
}

// get performs one API call and decodes the JSON body into out, mapping
// HTTP status codes to the standard ports errors.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	query.Set("apiKey", c.apiKey)
	fullURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w: %v", path, ports.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("request to %s returned %d: %w", path, resp.StatusCode, ports.ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("request to %s returned %d: %w", path, resp.StatusCode, ports.ErrRateLimited)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request to %s returned %d (%s): %w", path, resp.StatusCode, string(body), ports.ErrFeedUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Bars retrieves 1-minute bars for a contract ticker in [from, to),
// sorted ascending by bucket start.
func (c *Client) Bars(ctx context.Context, ticker string, from, to time.Time) ([]domain.Candle, error) {
	query := url.Values{
		"resolution":       {"1min"},
		"window_start.gte": {fmt.Sprintf("%d", from.UnixNano())},
		"window_start.lt":  {fmt.Sprintf("%d", to.UnixNano())},
		"limit":            {"50000"},
	}

	var resp aggsResponse
	path := "/futures/vX/aggs/" + url.PathEscape(ticker)
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(resp.Results))
	for _, raw := range resp.Results {
		if candle, ok := raw.normalize(); ok {
			candles = append(candles, candle)
		}
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].BucketStart.Before(candles[j].BucketStart)
	})

	c.logger.Debug(ctx, "Fetched bars", map[string]interface{}{
		"ticker": ticker, "count": len(candles), "from": from, "to": to,
	})
	return candles, nil
}

// LastPrice retrieves the most recent traded price for a contract ticker,
// taken from the close of the latest 1-minute bar.
func (c *Client) LastPrice(ctx context.Context, ticker string) (float64, error) {
	to := time.Now()
	from := to.Add(-30 * time.Minute)

	candles, err := c.Bars(ctx, ticker, from, to)
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("no recent bars for %s: %w", ticker, ports.ErrNoData)
	}
	return candles[len(candles)-1].Close, nil
}

// ResolveContract maps a calendar day to the active single contract for a
// product code. Prefers the latest-starting real contract whose active
// range covers the day; synthetic root tickers are always rejected.
func (c *Client) ResolveContract(ctx context.Context, productCode string, day time.Time) (string, error) {
	query := url.Values{
		"product_code": {productCode},
		"active":       {"all"},
		"type":         {"all"},
		"limit":        {"200"},
		"sort":         {"product_code.asc"},
	}

	var resp contractsResponse
	if err := c.get(ctx, "/futures/vX/contracts", query, &resp); err != nil {
		return "", err
	}

	dayUTC := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	type candidate struct {
		ticker string
		start  time.Time
	}
	var covering, fallback []candidate

	for _, raw := range resp.Results {
		if raw.Type != "single" || !realContractRe.MatchString(raw.Ticker) || syntheticRe.MatchString(raw.Ticker) {
			continue
		}
		start, okStart := parseDay(raw.ActiveStart, raw.FirstTrade)
		end, okEnd := parseDay(raw.ActiveEnd, raw.LastTrade)
		if !okStart || !okEnd {
			continue
		}
		cand := candidate{ticker: raw.Ticker, start: start}
		fallback = append(fallback, cand)
		if !dayUTC.Before(start) && !dayUTC.After(end) {
			covering = append(covering, cand)
		}
	}

	pool := covering
	if len(pool) == 0 {
		pool = fallback
	}
	if len(pool) == 0 {
		return "", fmt.Errorf("product %s on %s: %w", productCode, dayUTC.Format("2006-01-02"), ports.ErrContractUnresolved)
	}

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].start.After(pool[j].start)
	})

	c.logger.Debug(ctx, "Resolved contract", map[string]interface{}{
		"product": productCode, "day": dayUTC.Format("2006-01-02"), "ticker": pool[0].ticker,
	})
	return pool[0].ticker, nil
}

// parseDay parses the first non-empty date string, accepting both bare
// dates and RFC3339 timestamps.
func parseDay(values ...string) (time.Time, bool) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC().Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}
