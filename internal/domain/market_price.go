package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price observation for one symbol. Stale marks a
// quote that could not be refreshed and is being served from cache.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"` // percent
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale,omitempty"`
}

// PriceView is the set of quotes a single operation works against. It is
// captured before any ledger lock is taken so slow oracles never hold a lock.
type PriceView map[string]Quote

// PricePoint is one stored market-history observation, used by the
// standalone history service for charting.
type PricePoint struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Change24h  decimal.Decimal `json:"change_24h"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// MarketHistoryRepository defines the interface for price-point storage
type MarketHistoryRepository interface {
	// Insert stores one observation
	Insert(ctx context.Context, point *PricePoint) error

	// Query retrieves points for a symbol ordered by recorded_at descending.
	// Zero start/end mean unbounded.
	Query(ctx context.Context, symbol string, start, end time.Time, limit int) ([]PricePoint, error)
}
