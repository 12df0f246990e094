package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents one trading model competing in the simulation.
// Each account owns an independent ledger; accounts never share state.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Provider       string          `json:"provider"`   // reasoning service backing this model
	ModelName      string          `json:"model_name"` // e.g. "gpt-4o", "claude-sonnet"
	APIKeySealed   string          `json:"-"`          // encrypted at rest, never serialized
	InitialCapital decimal.Decimal `json:"initial_capital"`
	Cash           decimal.Decimal `json:"cash"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	TotalFees      decimal.Decimal `json:"total_fees"`
	CreatedAt      time.Time       `json:"created_at"`
	ArchivedAt     *time.Time      `json:"archived_at,omitempty"`
}

// Archived reports whether the account has been removed from active trading.
func (a *Account) Archived() bool {
	return a.ArchivedAt != nil
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// Create persists a new account
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID (archived or not)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetActive retrieves all non-archived accounts
	GetActive(ctx context.Context) ([]*Account, error)

	// UpdateBalances writes the authoritative cash/realized/fees columns
	UpdateBalances(ctx context.Context, id uuid.UUID, cash, realized, fees decimal.Decimal) error

	// Archive marks an account as removed; rows are kept for the audit trail
	Archive(ctx context.Context, id uuid.UUID, at time.Time) error
}
