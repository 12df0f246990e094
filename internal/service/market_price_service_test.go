package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickerPayload = `[
	{"symbol": "BTCUSDT", "lastPrice": "50000.00", "priceChangePercent": "2.5"},
	{"symbol": "ETHUSDT", "lastPrice": "3000.00", "priceChangePercent": "-1.2"},
	{"symbol": "DOGEUSDT", "lastPrice": "0.12", "priceChangePercent": "0.0"}
]`

func TestPricesMapsUSDTPairs(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		w.Write([]byte(tickerPayload))
	}))
	defer server.Close()

	svc := NewMarketPriceService(server.URL, time.Minute)
	view, err := svc.Prices(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)

	require.Contains(t, view, "BTC")
	assert.True(t, view["BTC"].Price.Equal(decimal.RequireFromString("50000")))
	assert.True(t, view["BTC"].Change24h.Equal(decimal.RequireFromString("2.5")))
	assert.False(t, view["BTC"].Stale)
	require.Contains(t, view, "ETH")
	assert.True(t, view["ETH"].Price.Equal(decimal.RequireFromString("3000")))
}

func TestPricesServedFromCacheWithinTTL(t *testing.T) {
	t.Parallel()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(tickerPayload))
	}))
	defer server.Close()

	svc := NewMarketPriceService(server.URL, time.Minute)
	ctx := context.Background()

	_, err := svc.Prices(ctx, []string{"BTC"})
	require.NoError(t, err)
	_, err = svc.Prices(ctx, []string{"BTC"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPricesStaleFallbackOnRefreshFailure(t *testing.T) {
	t.Parallel()
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(tickerPayload))
	}))
	defer server.Close()

	svc := NewMarketPriceService(server.URL, time.Minute)
	ctx := context.Background()

	_, err := svc.Prices(ctx, []string{"BTC"})
	require.NoError(t, err)

	// expire the cache and make the upstream fail
	svc.mu.Lock()
	svc.fetchedAt = svc.fetchedAt.Add(-2 * time.Minute)
	svc.mu.Unlock()
	fail.Store(true)

	view, err := svc.Prices(ctx, []string{"BTC"})
	require.NoError(t, err)
	require.Contains(t, view, "BTC")
	assert.True(t, view["BTC"].Stale)
	assert.True(t, view["BTC"].Price.Equal(decimal.RequireFromString("50000")))
}

func TestPricesUnknownSymbolAbsent(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tickerPayload))
	}))
	defer server.Close()

	svc := NewMarketPriceService(server.URL, time.Minute)
	view, err := svc.Prices(context.Background(), []string{"BTC", "NOPE"})
	require.NoError(t, err)

	assert.Contains(t, view, "BTC")
	assert.NotContains(t, view, "NOPE")
}
