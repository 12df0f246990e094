package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Signal is the closed set of trade instructions a model can emit.
type Signal string

// Trade signals. Hold is accepted at the boundary but never reaches the
// ledger; it produces no instruction.
const (
	SignalOpenLong  Signal = "open_long"
	SignalOpenShort Signal = "open_short"
	SignalClose     Signal = "close"
	SignalHold      Signal = "hold"
)

// Opens reports whether the signal opens (or adds to) a position.
func (s Signal) Opens() bool {
	return s == SignalOpenLong || s == SignalOpenShort
}

// Side returns the position side an opening signal targets.
func (s Signal) Side() Side {
	if s == SignalOpenShort {
		return SideShort
	}
	return SideLong
}

// Instruction is a validated trade proposal for one account. It is the tagged
// variant entering the trade state machine: opens carry quantity and leverage;
// closes carry an optional side and an optional partial quantity (zero means
// close the full position).
type Instruction struct {
	Signal   Signal          `json:"signal"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Leverage decimal.Decimal `json:"leverage"`
	// Side disambiguates a close when the account holds both a long and a
	// short position on the symbol. Empty is allowed when only one side is open.
	Side Side `json:"side,omitempty"`
}

// Leverage limits, mirrored from the simulated exchange rules.
var (
	MinLeverage = decimal.NewFromInt(1)
	MaxLeverage = decimal.NewFromInt(20)
)

// Validate checks the per-variant field requirements before the instruction
// enters the state machine. It returns a *ValidationError on failure.
func (i Instruction) Validate() error {
	if i.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	switch i.Signal {
	case SignalOpenLong, SignalOpenShort:
		if !i.Quantity.IsPositive() {
			return &ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		if i.Leverage.LessThan(MinLeverage) || i.Leverage.GreaterThan(MaxLeverage) {
			return &ValidationError{
				Field:  "leverage",
				Reason: "must be between " + MinLeverage.String() + " and " + MaxLeverage.String(),
			}
		}
	case SignalClose:
		if i.Quantity.IsNegative() {
			return &ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		if i.Side != "" && !i.Side.Valid() {
			return &ValidationError{Field: "side", Reason: "must be long or short"}
		}
	default:
		return &ValidationError{Field: "signal", Reason: "unknown signal " + string(i.Signal)}
	}
	return nil
}

// TradeRecord is the immutable audit row written for every accepted
// instruction. Records are append-only: never mutated, never deleted.
type TradeRecord struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Symbol      string          `json:"symbol"`
	Signal      Signal          `json:"signal"`
	Side        Side            `json:"side"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Leverage    decimal.Decimal `json:"leverage"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"` // gross; zero for opens
	Fee         decimal.Decimal `json:"fee"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TradeRepository defines the interface for the append-only trade log
type TradeRepository interface {
	// Insert appends one trade record
	Insert(ctx context.Context, record *TradeRecord) error

	// RecentByAccount retrieves the newest records for an account
	RecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*TradeRecord, error)
}
