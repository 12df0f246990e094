package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// Persistence is the write-through boundary between the in-memory ledgers and
// durable storage. The in-memory state is authoritative: a failed write is
// logged and the trade stands. A nil Persistence disables write-through, which
// the tests use.
type Persistence interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	ArchiveAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error
	UpdateBalances(ctx context.Context, accountID uuid.UUID, cash, realized, fees decimal.Decimal) error
	SavePosition(ctx context.Context, accountID uuid.UUID, position domain.Position) error
	DeletePosition(ctx context.Context, accountID uuid.UUID, symbol string, side domain.Side) error
	RecordTrade(ctx context.Context, record *domain.TradeRecord) error
	RecordSnapshot(ctx context.Context, snapshot *domain.AccountValueSnapshot) error
}

// Store owns every account ledger in the process. Lookups are cheap; all
// trading state lives inside the individual ledgers.
type Store struct {
	mu      sync.RWMutex
	ledgers map[uuid.UUID]*AccountLedger

	persist Persistence
	now     func() time.Time
}

// NewStore creates an empty store. persist may be nil for in-memory use.
func NewStore(persist Persistence) *Store {
	return &Store{
		ledgers: make(map[uuid.UUID]*AccountLedger),
		persist: persist,
		now:     time.Now,
	}
}

// Register creates a new account with a fresh ledger funded at initialCapital.
// Unlike trade write-through, a failed account insert is returned to the
// caller: an account that never reached storage should not start trading.
func (s *Store) Register(ctx context.Context, name, provider, modelName, apiKeySealed string, initialCapital decimal.Decimal) (*domain.Account, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !initialCapital.IsPositive() {
		return nil, &domain.ValidationError{Field: "initial_capital", Reason: "must be positive"}
	}
	account := &domain.Account{
		ID:             uuid.New(),
		Name:           name,
		Provider:       provider,
		ModelName:      modelName,
		APIKeySealed:   apiKeySealed,
		InitialCapital: initialCapital,
		Cash:           initialCapital,
		RealizedPnL:    decimal.Zero,
		TotalFees:      decimal.Zero,
		CreatedAt:      s.now(),
	}
	if s.persist != nil {
		if err := s.persist.CreateAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.ledgers[account.ID] = NewAccountLedger(account)
	s.mu.Unlock()

	log.Printf("[OK] Registered account %s (%s/%s)", account.Name, account.Provider, account.ModelName)
	return account, nil
}

// Restore loads a persisted account and its open positions into the store at
// startup. It overwrites any existing ledger for the same ID.
func (s *Store) Restore(account *domain.Account, positions []domain.Position) {
	s.mu.Lock()
	s.ledgers[account.ID] = RestoreAccountLedger(account, positions)
	s.mu.Unlock()
}

// Ledger retrieves the ledger for an account, archived or not.
func (s *Store) Ledger(accountID uuid.UUID) (*AccountLedger, error) {
	s.mu.RLock()
	l, ok := s.ledgers[accountID]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.AccountNotFoundError{AccountID: accountID}
	}
	return l, nil
}

// Archive withdraws an account from trading. The ledger and its history stay
// readable; new trades are rejected.
func (s *Store) Archive(ctx context.Context, accountID uuid.UUID) error {
	l, err := s.Ledger(accountID)
	if err != nil {
		return err
	}
	at := s.now()
	l.markArchived(at)
	if s.persist != nil {
		if err := s.persist.ArchiveAccount(ctx, accountID, at); err != nil {
			log.Printf("ERROR: archive write-through for account %s: %v", accountID, err)
		}
	}
	log.Printf("[OK] Archived account %s", accountID)
	return nil
}

// Snapshot returns a consistent copy of one account's ledger state.
func (s *Store) Snapshot(accountID uuid.UUID) (LedgerSnapshot, error) {
	l, err := s.Ledger(accountID)
	if err != nil {
		return LedgerSnapshot{}, err
	}
	return l.Snapshot(), nil
}

// Snapshots returns a point-in-time copy of every ledger. Each snapshot is
// internally consistent; the set as a whole is not a cross-account
// transaction.
func (s *Store) Snapshots(includeArchived bool) []LedgerSnapshot {
	s.mu.RLock()
	ledgers := make([]*AccountLedger, 0, len(s.ledgers))
	for _, l := range s.ledgers {
		ledgers = append(ledgers, l)
	}
	s.mu.RUnlock()

	out := make([]LedgerSnapshot, 0, len(ledgers))
	for _, l := range ledgers {
		snap := l.Snapshot()
		if snap.ArchivedAt != nil && !includeArchived {
			continue
		}
		out = append(out, snap)
	}
	return out
}

// AccountIDs lists the active account IDs.
func (s *Store) AccountIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(s.ledgers))
	for id, l := range s.ledgers {
		if !l.Archived() {
			out = append(out, id)
		}
	}
	return out
}
