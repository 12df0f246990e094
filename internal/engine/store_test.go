package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitradegame/internal/domain"
)

// recordingPersistence captures write-through calls for assertions.
type recordingPersistence struct {
	mu       sync.Mutex
	accounts []uuid.UUID
	trades   []*domain.TradeRecord
	balances int
	failNext error
}

func (r *recordingPersistence) CreateAccount(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.accounts = append(r.accounts, account.ID)
	return nil
}

func (r *recordingPersistence) ArchiveAccount(context.Context, uuid.UUID, time.Time) error {
	return nil
}

func (r *recordingPersistence) UpdateBalances(_ context.Context, _ uuid.UUID, _, _, _ decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances++
	return nil
}

func (r *recordingPersistence) SavePosition(context.Context, uuid.UUID, domain.Position) error {
	return nil
}

func (r *recordingPersistence) DeletePosition(context.Context, uuid.UUID, string, domain.Side) error {
	return nil
}

func (r *recordingPersistence) RecordTrade(_ context.Context, record *domain.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, record)
	return nil
}

func (r *recordingPersistence) RecordSnapshot(context.Context, *domain.AccountValueSnapshot) error {
	return nil
}

func TestStoreRegisterValidation(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.Register(ctx, "", "openai", "gpt-4o", "", d("10000"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = store.Register(ctx, "m", "openai", "gpt-4o", "", d("0"))
	require.ErrorAs(t, err, &verr)
}

func TestStoreRegisterFundsLedger(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)

	account, err := store.Register(context.Background(), "m", "anthropic", "claude-sonnet", "sealed", d("10000"))
	require.NoError(t, err)

	snap, err := store.Snapshot(account.ID)
	require.NoError(t, err)
	assert.True(t, snap.Cash.Equal(d("10000")))
	assert.True(t, snap.InitialCapital.Equal(d("10000")))
	assert.Empty(t, snap.Positions)

	ledger, err := store.Ledger(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "sealed", ledger.APIKeySealed())
}

func TestStoreRegisterFailsWhenInsertFails(t *testing.T) {
	t.Parallel()
	persist := &recordingPersistence{failNext: assert.AnError}
	store := NewStore(persist)

	_, err := store.Register(context.Background(), "m", "openai", "gpt-4o", "", d("10000"))
	require.Error(t, err)
	assert.Empty(t, store.AccountIDs())
}

func TestStoreRestoreRebuildsState(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	id := uuid.New()

	store.Restore(&domain.Account{
		ID:             id,
		Name:           "restored",
		InitialCapital: d("10000"),
		Cash:           d("4950"),
		RealizedPnL:    d("120"),
		TotalFees:      d("80"),
	}, []domain.Position{
		{Symbol: "BTC", Side: domain.SideLong, Quantity: d("1"), AvgEntryPrice: d("50000"), Leverage: d("10")},
	})

	snap, err := store.Snapshot(id)
	require.NoError(t, err)
	assert.True(t, snap.Cash.Equal(d("4950")))
	assert.True(t, snap.RealizedPnL.Equal(d("120")))
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, "BTC", snap.Positions[0].Symbol)
}

func TestStoreArchiveExcludesFromActive(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	ctx := context.Background()
	a, err := store.Register(ctx, "a", "openai", "gpt-4o", "", d("10000"))
	require.NoError(t, err)
	b, err := store.Register(ctx, "b", "openai", "gpt-4o", "", d("10000"))
	require.NoError(t, err)

	require.NoError(t, store.Archive(ctx, a.ID))

	ids := store.AccountIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, b.ID, ids[0])

	// archived ledgers stay readable
	snap, err := store.Snapshot(a.ID)
	require.NoError(t, err)
	assert.NotNil(t, snap.ArchivedAt)

	assert.Len(t, store.Snapshots(false), 1)
	assert.Len(t, store.Snapshots(true), 2)
}

func TestStoreUnknownAccount(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)

	var aerr *domain.AccountNotFoundError
	_, err := store.Ledger(uuid.New())
	require.ErrorAs(t, err, &aerr)
	err = store.Archive(context.Background(), uuid.New())
	require.ErrorAs(t, err, &aerr)
}

func TestStoreWriteThroughOnTrade(t *testing.T) {
	t.Parallel()
	persist := &recordingPersistence{}
	store := NewStore(persist)
	proc := NewTradeProcessor(store, d("0.001"))
	account, err := store.Register(context.Background(), "m", "openai", "gpt-4o", "", d("10000"))
	require.NoError(t, err)

	_, err = proc.Process(context.Background(), account.ID, domain.Instruction{
		Signal:   domain.SignalOpenLong,
		Symbol:   "BTC",
		Quantity: d("1"),
		Leverage: d("10"),
	}, livePrices(map[string]string{"BTC": "50000"}))
	require.NoError(t, err)

	persist.mu.Lock()
	defer persist.mu.Unlock()
	assert.Len(t, persist.accounts, 1)
	require.Len(t, persist.trades, 1)
	assert.Equal(t, domain.SignalOpenLong, persist.trades[0].Signal)
	assert.Equal(t, 1, persist.balances)
}
