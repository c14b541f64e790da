package massive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  &mockLogger{},
	})
	require.NoError(t, err)
	return client, server
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{APIKey: "k"})
	assert.Error(t, err)

	_, err = New(Config{Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestBars_NormalizesFieldAliases(t *testing.T) {
	base := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/futures/vX/aggs/ESM5", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "1min", r.URL.Query().Get("resolution"))

		// Mixed aliases, out of order, one row missing its close.
		fmt.Fprintf(w, `{"results":[
			{"window_start":%d,"o":5001,"h":5003,"l":5000,"c":5002,"v":10},
			{"t":%d,"open":5000,"high":5002,"low":4999,"close":5001,"volume":7},
			{"ts":%d,"o":5002,"h":5004,"l":5001}
		]}`, base.Add(time.Minute).UnixNano(), base.UnixNano(), base.Add(2*time.Minute).UnixNano())
	})

	candles, err := client.Bars(context.Background(), "ESM5", base, base.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, candles, 2)

	// Sorted ascending despite payload order.
	assert.Equal(t, base, candles[0].BucketStart)
	assert.Equal(t, 5000.0, candles[0].Open)
	assert.Equal(t, 7.0, candles[0].Volume)
	assert.Equal(t, base.Add(time.Minute), candles[1].BucketStart)
	assert.Equal(t, 5002.0, candles[1].Close)
	assert.True(t, candles[0].Closed)
}

func TestBars_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ports.ErrAuthenticationFailed},
		{http.StatusForbidden, ports.ErrAuthenticationFailed},
		{http.StatusTooManyRequests, ports.ErrRateLimited},
		{http.StatusInternalServerError, ports.ErrFeedUnavailable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.Bars(context.Background(), "ESM5", time.Now().Add(-time.Hour), time.Now())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLastPrice(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Minute)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"results":[
			{"window_start":%d,"o":5000,"h":5001,"l":4999,"c":5000.5},
			{"window_start":%d,"o":5000.5,"h":5002,"l":5000,"c":5001.25}
		]}`, now.Add(-2*time.Minute).UnixNano(), now.Add(-time.Minute).UnixNano())
	})

	price, err := client.LastPrice(context.Background(), "ESM5")
	require.NoError(t, err)
	assert.Equal(t, 5001.25, price)
}

func TestLastPrice_NoData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})

	_, err := client.LastPrice(context.Background(), "ESM5")
	assert.ErrorIs(t, err, ports.ErrNoData)
}

func TestResolveContract(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/futures/vX/contracts", r.URL.Path)
		assert.Equal(t, "ES", r.URL.Query().Get("product_code"))

		fmt.Fprint(w, `{"results":[
			{"ticker":"ESM5","type":"single","active_start":"2024-06-17","active_end":"2025-06-20"},
			{"ticker":"ESH5","type":"single","active_start":"2024-03-18","active_end":"2025-03-21"},
			{"ticker":"ESM0","type":"single","active_start":"2000-01-01","active_end":"2100-01-01"},
			{"ticker":"ES","type":"combo","active_start":"2000-01-01","active_end":"2100-01-01"},
			{"ticker":"ESU5","type":"single","active_start":"2024-09-16","active_end":"2025-09-19"}
		]}`)
	})

	// 2025-06-02 is covered by ESM5 and ESU5; ESU5 has the later start.
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ticker, err := client.ResolveContract(context.Background(), "ES", day)
	require.NoError(t, err)
	assert.Equal(t, "ESU5", ticker)
}

func TestResolveContract_Unresolved(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Only synthetic and non-single rows.
		fmt.Fprint(w, `{"results":[
			{"ticker":"ESZ0","type":"single","active_start":"2000-01-01","active_end":"2100-01-01"},
			{"ticker":"ES","type":"combo","active_start":"2000-01-01","active_end":"2100-01-01"}
		]}`)
	})

	_, err := client.ResolveContract(context.Background(), "ES", time.Now())
	assert.ErrorIs(t, err, ports.ErrContractUnresolved)
}
