package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountValueSnapshot is one equity-curve point for one account.
// Invariant at write time: TotalValue == Cash + PositionsValue.
type AccountValueSnapshot struct {
	AccountID      uuid.UUID       `json:"account_id"`
	Timestamp      time.Time       `json:"timestamp"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Cash           decimal.Decimal `json:"cash"`
	PositionsValue decimal.Decimal `json:"positions_value"`
}

// SnapshotRepository defines the interface for equity history persistence
type SnapshotRepository interface {
	// Insert appends one snapshot row
	Insert(ctx context.Context, snapshot *AccountValueSnapshot) error

	// Range retrieves snapshots for an account ordered by timestamp ascending.
	// Zero from/to mean unbounded; limit 0 means no limit.
	Range(ctx context.Context, accountID uuid.UUID, from, to time.Time, limit int) ([]AccountValueSnapshot, error)
}
