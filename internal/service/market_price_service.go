package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// DefaultCacheTTL is how long a fetched quote is served without refreshing.
const DefaultCacheTTL = 30 * time.Second

// MarketPriceService fetches real-time prices from Binance and caches them.
// When a refresh fails, the last known quotes are served marked stale so
// valuation keeps working while trading is blocked.
type MarketPriceService struct {
	httpClient *http.Client
	baseURL    string
	cacheTTL   time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	cache     domain.PriceView
	fetchedAt time.Time
}

// NewMarketPriceService creates a new MarketPriceService
func NewMarketPriceService(baseURL string, cacheTTL time.Duration) *MarketPriceService {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &MarketPriceService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  baseURL,
		cacheTTL: cacheTTL,
		now:      time.Now,
		cache:    make(domain.PriceView),
	}
}

// Prices returns quotes for the given symbols, refreshing from Binance when
// the cache has expired. On refresh failure the cached quotes come back
// marked stale; symbols never seen are simply absent from the view.
func (s *MarketPriceService) Prices(ctx context.Context, symbols []string) (domain.PriceView, error) {
	s.mu.RLock()
	fresh := s.now().Sub(s.fetchedAt) < s.cacheTTL
	s.mu.RUnlock()

	if !fresh {
		if err := s.refresh(ctx, symbols); err != nil {
			log.Printf("WARNING: price refresh failed, serving stale quotes: %v", err)
			return s.view(symbols, true), nil
		}
	}
	return s.view(symbols, false), nil
}

// view copies the requested quotes out of the cache.
func (s *MarketPriceService) view(symbols []string, markStale bool) domain.PriceView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(domain.PriceView, len(symbols))
	for _, symbol := range symbols {
		q, ok := s.cache[symbol]
		if !ok {
			continue
		}
		if markStale {
			q.Stale = true
		}
		out[symbol] = q
	}
	return out
}

// refresh pulls 24h tickers for the requested symbols. Symbols are quoted
// against USDT on the exchange, so BTC maps to the BTCUSDT pair.
func (s *MarketPriceService) refresh(ctx context.Context, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/api/v3/ticker/24hr", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch prices from Binance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Binance API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var tickers []struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return fmt.Errorf("failed to decode tickers: %w", err)
	}

	// map BTCUSDT back to the requested BTC
	pairToSymbol := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		pairToSymbol[strings.ToUpper(symbol)+"USDT"] = symbol
	}

	at := s.now()
	fetched := make(domain.PriceView, len(symbols))
	for _, ticker := range tickers {
		symbol, ok := pairToSymbol[ticker.Symbol]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(ticker.LastPrice)
		if err != nil || !price.IsPositive() {
			continue
		}
		change, err := decimal.NewFromString(ticker.PriceChangePercent)
		if err != nil {
			change = decimal.Zero
		}
		fetched[symbol] = domain.Quote{
			Symbol:    symbol,
			Price:     price,
			Change24h: change,
			FetchedAt: at,
		}
	}

	if len(fetched) == 0 {
		return fmt.Errorf("no prices returned for symbols: %v", symbols)
	}

	s.mu.Lock()
	for symbol, q := range fetched {
		s.cache[symbol] = q
	}
	s.fetchedAt = at
	s.mu.Unlock()

	return nil
}
