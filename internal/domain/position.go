package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of a position
type Side string

// Position sides. A symbol may hold a long and a short position at the same
// time (hedged); the ledger never nets them against each other.
const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Valid reports whether the side is one of the two known directions.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// Position represents an open exposure to a symbol on one side within one
// account. Quantity is in base-asset units; AvgEntryPrice is volume-weighted
// across fills. Leverage is fixed for the lifetime of the position.
type Position struct {
	Symbol        string          `json:"symbol"`
	Side          Side            `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgEntryPrice decimal.Decimal `json:"avg_entry_price"`
	Leverage      decimal.Decimal `json:"leverage"`
	OpenedAt      time.Time       `json:"opened_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MarginUsed returns the capital reserved for this position:
// quantity * avg_entry_price / leverage.
func (p *Position) MarginUsed() decimal.Decimal {
	if p.Leverage.IsZero() {
		return decimal.Zero
	}
	return p.Quantity.Mul(p.AvgEntryPrice).Div(p.Leverage)
}

// UnrealizedPnL returns the mark-to-market profit at the given price.
// Longs gain when price rises, shorts when it falls.
func (p *Position) UnrealizedPnL(currentPrice decimal.Decimal) decimal.Decimal {
	if p.Side == SideLong {
		return currentPrice.Sub(p.AvgEntryPrice).Mul(p.Quantity)
	}
	return p.AvgEntryPrice.Sub(currentPrice).Mul(p.Quantity)
}

// Notional returns quantity * current price, the gross exposure at the mark.
func (p *Position) Notional(currentPrice decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(currentPrice)
}

// NetPosition is the reporting-only long/short quantity breakdown for one
// symbol. It is a projection for display, never ledger state.
type NetPosition struct {
	Symbol string          `json:"symbol"`
	Long   decimal.Decimal `json:"long"`
	Short  decimal.Decimal `json:"short"`
}

// PositionRepository defines the interface for position persistence
type PositionRepository interface {
	// Upsert writes the current state of an open position
	Upsert(ctx context.Context, accountID uuid.UUID, position Position) error

	// Delete removes a fully closed position
	Delete(ctx context.Context, accountID uuid.UUID, symbol string, side Side) error

	// GetByAccount retrieves all open positions for an account
	GetByAccount(ctx context.Context, accountID uuid.UUID) ([]Position, error)
}
