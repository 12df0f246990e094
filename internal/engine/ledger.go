package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// AccountLedger is the authoritative in-memory state for one account. Writers
// hold the semaphore for the full validate-apply-record span so at most one
// trade is in flight per account; the RWMutex guards the short commit window
// so concurrent readers always see a fully applied state.
type AccountLedger struct {
	accountID      uuid.UUID
	name           string
	provider       string
	modelName      string
	apiKeySealed   string
	initialCapital decimal.Decimal
	createdAt      time.Time

	sem chan struct{}

	mu          sync.RWMutex
	cash        decimal.Decimal
	realizedPnL decimal.Decimal
	totalFees   decimal.Decimal
	book        *PositionBook
	archivedAt  *time.Time
}

// LedgerSnapshot is a consistent read-only copy of one ledger's state.
type LedgerSnapshot struct {
	AccountID      uuid.UUID
	Name           string
	Provider       string
	ModelName      string
	InitialCapital decimal.Decimal
	Cash           decimal.Decimal
	RealizedPnL    decimal.Decimal
	TotalFees      decimal.Decimal
	Positions      []domain.Position
	CreatedAt      time.Time
	ArchivedAt     *time.Time
}

// NewAccountLedger builds a fresh ledger with cash equal to the initial
// capital and an empty book.
func NewAccountLedger(account *domain.Account) *AccountLedger {
	return &AccountLedger{
		accountID:      account.ID,
		name:           account.Name,
		provider:       account.Provider,
		modelName:      account.ModelName,
		apiKeySealed:   account.APIKeySealed,
		initialCapital: account.InitialCapital,
		createdAt:      account.CreatedAt,
		sem:            make(chan struct{}, 1),
		cash:           account.InitialCapital,
		realizedPnL:    decimal.Zero,
		totalFees:      decimal.Zero,
		book:           NewPositionBook(),
	}
}

// RestoreAccountLedger rebuilds a ledger from persisted state at startup.
func RestoreAccountLedger(account *domain.Account, positions []domain.Position) *AccountLedger {
	l := NewAccountLedger(account)
	l.cash = account.Cash
	l.realizedPnL = account.RealizedPnL
	l.totalFees = account.TotalFees
	l.archivedAt = account.ArchivedAt
	for _, p := range positions {
		pos := p
		l.book.positions[bookKey{p.Symbol, p.Side}] = &pos
	}
	return l
}

// AccountID returns the owning account's ID.
func (l *AccountLedger) AccountID() uuid.UUID {
	return l.accountID
}

// APIKeySealed returns the encrypted reasoning-service credential.
func (l *AccountLedger) APIKeySealed() string {
	return l.apiKeySealed
}

// acquire takes the per-account trade lock, waiting at most timeout. A full
// wait means another trade is still in flight and the caller gets a
// ConcurrencyError instead of queueing behind it.
func (l *AccountLedger) acquire(timeout time.Duration) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return &domain.ConcurrencyError{AccountID: l.accountID}
	}
}

// release gives the trade lock back.
func (l *AccountLedger) release() {
	<-l.sem
}

// Snapshot returns a consistent copy of the ledger state. Safe to call while
// a trade is in flight; it observes either the pre- or post-trade state,
// never a partial one.
func (l *AccountLedger) Snapshot() LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LedgerSnapshot{
		AccountID:      l.accountID,
		Name:           l.name,
		Provider:       l.provider,
		ModelName:      l.modelName,
		InitialCapital: l.initialCapital,
		Cash:           l.cash,
		RealizedPnL:    l.realizedPnL,
		TotalFees:      l.totalFees,
		Positions:      l.book.All(),
		CreatedAt:      l.createdAt,
		ArchivedAt:     l.archivedAt,
	}
}

// Archived reports whether the account has been withdrawn from trading.
func (l *AccountLedger) Archived() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.archivedAt != nil
}

// markArchived stamps the ledger as withdrawn. Open positions are left in
// place; the audit trail keeps them visible.
func (l *AccountLedger) markArchived(at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.archivedAt = &at
}
