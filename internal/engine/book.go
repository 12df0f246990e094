package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

type bookKey struct {
	symbol string
	side   domain.Side
}

// PositionBook holds one account's open positions keyed by (symbol, side).
// A zero-quantity entry never persists: reducing a position to zero removes
// it from the map. The book is not safe for concurrent use; the owning
// AccountLedger serializes all access.
type PositionBook struct {
	positions map[bookKey]*domain.Position
}

// NewPositionBook creates an empty book
func NewPositionBook() *PositionBook {
	return &PositionBook{positions: make(map[bookKey]*domain.Position)}
}

// Get retrieves the position at (symbol, side), if any.
func (b *PositionBook) Get(symbol string, side domain.Side) (domain.Position, bool) {
	p, ok := b.positions[bookKey{symbol, side}]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// Upsert opens or adds to the position at (symbol, side). Adding recomputes
// the entry as the quantity-weighted average of the old and new fills:
//
//	new_avg = (old_qty*old_avg + delta_qty*price) / (old_qty+delta_qty)
//
// Adding at a leverage different from the stored one is rejected: silently
// changing margin exposure on an open position is not allowed.
func (b *PositionBook) Upsert(symbol string, side domain.Side, deltaQty, price, leverage decimal.Decimal, at time.Time) error {
	if !deltaQty.IsPositive() {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	key := bookKey{symbol, side}
	existing, ok := b.positions[key]
	if !ok {
		b.positions[key] = &domain.Position{
			Symbol:        symbol,
			Side:          side,
			Quantity:      deltaQty,
			AvgEntryPrice: price,
			Leverage:      leverage,
			OpenedAt:      at,
			UpdatedAt:     at,
		}
		return nil
	}
	if !existing.Leverage.Equal(leverage) {
		return &domain.ValidationError{
			Field: "leverage",
			Reason: fmt.Sprintf("open %s %s position uses %sx, cannot add at %sx",
				side, symbol, existing.Leverage, leverage),
		}
	}
	oldCost := existing.Quantity.Mul(existing.AvgEntryPrice)
	addCost := deltaQty.Mul(price)
	newQty := existing.Quantity.Add(deltaQty)
	existing.AvgEntryPrice = oldCost.Add(addCost).Div(newQty)
	existing.Quantity = newQty
	existing.UpdatedAt = at
	return nil
}

// Reduce shrinks the position at (symbol, side) by qty, removing it when the
// remaining quantity reaches zero. The caller must have verified that the
// position exists and holds at least qty.
func (b *PositionBook) Reduce(symbol string, side domain.Side, qty decimal.Decimal, at time.Time) error {
	key := bookKey{symbol, side}
	existing, ok := b.positions[key]
	if !ok {
		return &domain.NoSuchPositionError{Symbol: symbol, Side: side}
	}
	remaining := existing.Quantity.Sub(qty)
	if remaining.IsNegative() {
		return &domain.IntegrityError{
			Reason: fmt.Sprintf("reduce %s %s by %s exceeds held %s", side, symbol, qty, existing.Quantity),
		}
	}
	if remaining.IsZero() {
		delete(b.positions, key)
		return nil
	}
	existing.Quantity = remaining
	existing.UpdatedAt = at
	return nil
}

// Remove drops the position at (symbol, side) regardless of quantity.
func (b *PositionBook) Remove(symbol string, side domain.Side) {
	delete(b.positions, bookKey{symbol, side})
}

// Len returns the number of open positions.
func (b *PositionBook) Len() int {
	return len(b.positions)
}

// All returns copies of every open position, ordered by symbol then side for
// stable output.
func (b *PositionBook) All() []domain.Position {
	out := make([]domain.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Side < out[j].Side
	})
	return out
}

// NetBySymbol builds the reporting-only long/short breakdown per symbol.
// Hedged books keep both quantities visible; nothing is netted away.
func (b *PositionBook) NetBySymbol() []domain.NetPosition {
	bySymbol := make(map[string]*domain.NetPosition)
	for _, p := range b.positions {
		net, ok := bySymbol[p.Symbol]
		if !ok {
			net = &domain.NetPosition{Symbol: p.Symbol, Long: decimal.Zero, Short: decimal.Zero}
			bySymbol[p.Symbol] = net
		}
		if p.Side == domain.SideLong {
			net.Long = net.Long.Add(p.Quantity)
		} else {
			net.Short = net.Short.Add(p.Quantity)
		}
	}
	out := make([]domain.NetPosition, 0, len(bySymbol))
	for _, net := range bySymbol {
		out = append(out, *net)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
