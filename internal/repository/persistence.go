package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
	"aitradegame/internal/engine"
)

// LedgerPersistence bundles the per-table repositories behind the engine's
// write-through boundary so the ledger store talks to one dependency instead
// of five.
type LedgerPersistence struct {
	accounts  domain.AccountRepository
	positions domain.PositionRepository
	trades    domain.TradeRepository
	snapshots domain.SnapshotRepository
}

// NewLedgerPersistence wires the composite over one connection pool.
func NewLedgerPersistence(db *pgxpool.Pool) engine.Persistence {
	return &LedgerPersistence{
		accounts:  NewAccountRepository(db),
		positions: NewPositionRepository(db),
		trades:    NewTradeRepository(db),
		snapshots: NewSnapshotRepository(db),
	}
}

// CreateAccount persists a new account row
func (p *LedgerPersistence) CreateAccount(ctx context.Context, account *domain.Account) error {
	return p.accounts.Create(ctx, account)
}

// ArchiveAccount stamps an account row as archived
func (p *LedgerPersistence) ArchiveAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	return p.accounts.Archive(ctx, accountID, at)
}

// UpdateBalances writes the post-trade balances
func (p *LedgerPersistence) UpdateBalances(ctx context.Context, accountID uuid.UUID, cash, realized, fees decimal.Decimal) error {
	return p.accounts.UpdateBalances(ctx, accountID, cash, realized, fees)
}

// SavePosition upserts an open position row
func (p *LedgerPersistence) SavePosition(ctx context.Context, accountID uuid.UUID, position domain.Position) error {
	return p.positions.Upsert(ctx, accountID, position)
}

// DeletePosition removes a fully closed position row
func (p *LedgerPersistence) DeletePosition(ctx context.Context, accountID uuid.UUID, symbol string, side domain.Side) error {
	return p.positions.Delete(ctx, accountID, symbol, side)
}

// RecordTrade appends one trade log row
func (p *LedgerPersistence) RecordTrade(ctx context.Context, record *domain.TradeRecord) error {
	return p.trades.Insert(ctx, record)
}

// RecordSnapshot appends one equity history row
func (p *LedgerPersistence) RecordSnapshot(ctx context.Context, snapshot *domain.AccountValueSnapshot) error {
	return p.snapshots.Insert(ctx, snapshot)
}
