package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// Valuation is one account's mark-to-market view. PositionsValue is the
// equity locked in open positions (margin plus unrealized pnl), so
// TotalValue = Cash + PositionsValue always holds. GrossNotional is the
// separate leverage-inflated exposure figure.
type Valuation struct {
	AccountID      uuid.UUID            `json:"account_id"`
	Name           string               `json:"name"`
	Provider       string               `json:"provider"`
	ModelName      string               `json:"model_name"`
	InitialCapital decimal.Decimal      `json:"initial_capital"`
	Cash           decimal.Decimal      `json:"cash"`
	MarginUsed     decimal.Decimal      `json:"margin_used"`
	UnrealizedPnL  decimal.Decimal      `json:"unrealized_pnl"`
	PositionsValue decimal.Decimal      `json:"positions_value"`
	GrossNotional  decimal.Decimal      `json:"gross_notional"`
	TotalValue     decimal.Decimal      `json:"total_value"`
	RealizedPnL    decimal.Decimal      `json:"realized_pnl"`
	TotalFees      decimal.Decimal      `json:"total_fees"`
	ReturnPct      decimal.Decimal      `json:"return_pct"`
	Positions      []domain.Position    `json:"positions"`
	Net            []domain.NetPosition `json:"net_positions"`
	Stale          bool                 `json:"stale,omitempty"`
	AsOf           time.Time            `json:"as_of"`
}

// Value marks a ledger snapshot against the given prices. It is a pure
// function of its inputs and never rejects: a position whose quote is stale
// is valued at the stale price, and a position with no quote at all is
// carried at its entry price with zero unrealized pnl. Either case marks the
// whole valuation stale so callers can tell a degraded figure from a live
// one.
func Value(snap LedgerSnapshot, prices domain.PriceView, asOf time.Time) Valuation {
	v := Valuation{
		AccountID:      snap.AccountID,
		Name:           snap.Name,
		Provider:       snap.Provider,
		ModelName:      snap.ModelName,
		InitialCapital: snap.InitialCapital,
		Cash:           snap.Cash,
		MarginUsed:     decimal.Zero,
		UnrealizedPnL:  decimal.Zero,
		GrossNotional:  decimal.Zero,
		RealizedPnL:    snap.RealizedPnL,
		TotalFees:      snap.TotalFees,
		Positions:      snap.Positions,
		AsOf:           asOf,
	}

	for i := range snap.Positions {
		pos := &snap.Positions[i]
		mark := pos.AvgEntryPrice
		if q, ok := prices[pos.Symbol]; ok && q.Price.IsPositive() {
			mark = q.Price
			if q.Stale {
				v.Stale = true
			}
		} else {
			v.Stale = true
		}
		v.MarginUsed = v.MarginUsed.Add(pos.MarginUsed())
		v.UnrealizedPnL = v.UnrealizedPnL.Add(pos.UnrealizedPnL(mark))
		v.GrossNotional = v.GrossNotional.Add(pos.Notional(mark))
	}

	v.PositionsValue = v.MarginUsed.Add(v.UnrealizedPnL)
	v.TotalValue = v.Cash.Add(v.PositionsValue)
	if snap.InitialCapital.IsPositive() {
		v.ReturnPct = v.TotalValue.Sub(snap.InitialCapital).
			Div(snap.InitialCapital).
			Mul(decimal.NewFromInt(100))
	}
	v.Net = netFromPositions(snap.Positions)
	return v
}

// netFromPositions builds the per-symbol long/short breakdown from a
// position slice, mirroring PositionBook.NetBySymbol for snapshot data.
func netFromPositions(positions []domain.Position) []domain.NetPosition {
	book := NewPositionBook()
	for _, p := range positions {
		pos := p
		book.positions[bookKey{p.Symbol, p.Side}] = &pos
	}
	return book.NetBySymbol()
}
