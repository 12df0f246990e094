package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"aitradegame/internal/domain"
)

// MarketHistoryService samples market quotes into durable history and serves
// range queries over them for charting.
type MarketHistoryService struct {
	prices  *MarketPriceService
	repo    domain.MarketHistoryRepository
	symbols []string
}

// NewMarketHistoryService creates a new MarketHistoryService
func NewMarketHistoryService(prices *MarketPriceService, repo domain.MarketHistoryRepository, symbols []string) *MarketHistoryService {
	return &MarketHistoryService{
		prices:  prices,
		repo:    repo,
		symbols: symbols,
	}
}

// Collect samples the current quotes and stores one point per live symbol.
// Stale quotes are skipped: a stored history point means the price was real
// at that moment.
func (s *MarketHistoryService) Collect(ctx context.Context) error {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		return fmt.Errorf("failed to fetch prices for history: %w", err)
	}

	stored := 0
	for _, symbol := range s.symbols {
		q, ok := view[symbol]
		if !ok || q.Stale {
			continue
		}
		point := &domain.PricePoint{
			Symbol:     q.Symbol,
			Price:      q.Price,
			Change24h:  q.Change24h,
			RecordedAt: q.FetchedAt,
		}
		if err := s.repo.Insert(ctx, point); err != nil {
			log.Printf("ERROR: failed to store history point for %s: %v", symbol, err)
			continue
		}
		stored++
	}

	log.Printf("[OK] Market history tick: stored %d/%d symbols", stored, len(s.symbols))
	return nil
}

// History retrieves stored points for one symbol, newest first.
func (s *MarketHistoryService) History(ctx context.Context, symbol string, start, end time.Time, limit int) ([]domain.PricePoint, error) {
	if symbol == "" {
		return nil, &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	return s.repo.Query(ctx, symbol, start, end, limit)
}

// Symbols returns the tracked symbol list.
func (s *MarketHistoryService) Symbols() []string {
	return s.symbols
}
