package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DecisionContext is everything the external reasoning service sees when
// asked for a trading decision: the account's current state plus the market.
type DecisionContext struct {
	AccountID      uuid.UUID       `json:"account_id"`
	AccountName    string          `json:"account_name"`
	Provider       string          `json:"-"`
	ModelName      string          `json:"model_name"`
	APIKey         string          `json:"-"` // unsealed only for the duration of the call
	Cash           decimal.Decimal `json:"cash"`
	TotalValue     decimal.Decimal `json:"total_value"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
	ReturnPct      decimal.Decimal `json:"return_pct"`
	Positions      []Position      `json:"positions"`
	Market         []Quote         `json:"market"`
	AsOf           time.Time       `json:"as_of"`
}

// DecisionResult carries the parsed instructions plus the raw exchange for
// the conversation audit log.
type DecisionResult struct {
	Instructions []Instruction
	Prompt       string
	Raw          string
}

// Advisor is the decision-generation boundary. Implementations must respect
// ctx deadlines; the engine calls Decide before acquiring any ledger lock.
type Advisor interface {
	Decide(ctx context.Context, dc DecisionContext) (*DecisionResult, error)
}

// ConversationRecord stores one prompt/response exchange for debugging and
// audit. Mirrors the trade log: append-only.
type ConversationRecord struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationRepository defines the interface for conversation persistence
type ConversationRepository interface {
	// Insert appends one conversation record
	Insert(ctx context.Context, record *ConversationRecord) error

	// RecentByAccount retrieves the newest exchanges for an account
	RecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*ConversationRecord, error)
}
