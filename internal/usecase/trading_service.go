package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"aitradegame/internal/domain"
	"aitradegame/internal/engine"
)

// PriceSource supplies quotes for a symbol set.
type PriceSource interface {
	Prices(ctx context.Context, symbols []string) (domain.PriceView, error)
}

// KeyOpener unseals a stored provider credential for the duration of one
// reasoning call.
type KeyOpener interface {
	Open(sealed string) (string, error)
}

// TradingService drives the trading loop: gather market and account state,
// ask the account's model for decisions, and feed accepted instructions
// through the ledger engine. It also owns the equity snapshot tick.
type TradingService struct {
	store     *engine.Store
	processor *engine.TradeProcessor
	history   *engine.HistoryRecorder
	prices    PriceSource
	advisor   domain.Advisor
	sealer    KeyOpener

	conversations domain.ConversationRepository // nil disables the audit log
	symbols       []string
	now           func() time.Time
}

// NewTradingService creates a new TradingService
func NewTradingService(
	store *engine.Store,
	processor *engine.TradeProcessor,
	history *engine.HistoryRecorder,
	prices PriceSource,
	advisor domain.Advisor,
	sealer KeyOpener,
	conversations domain.ConversationRepository,
	symbols []string,
) *TradingService {
	return &TradingService{
		store:         store,
		processor:     processor,
		history:       history,
		prices:        prices,
		advisor:       advisor,
		sealer:        sealer,
		conversations: conversations,
		symbols:       symbols,
		now:           time.Now,
	}
}

// RunAll runs one trading cycle for every active account. Accounts fail
// independently: one model erroring out never blocks the others.
func (s *TradingService) RunAll(ctx context.Context) {
	ids := s.store.AccountIDs()
	log.Printf("[OK] Trading cycle starting for %d accounts", len(ids))
	for _, id := range ids {
		if err := s.RunCycle(ctx, id); err != nil {
			log.Printf("ERROR: trading cycle for account %s: %v", id, err)
		}
	}
}

// RunCycle runs one decide-then-trade cycle for one account.
func (s *TradingService) RunCycle(ctx context.Context, accountID uuid.UUID) error {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		return fmt.Errorf("failed to fetch prices: %w", err)
	}

	ledger, err := s.store.Ledger(accountID)
	if err != nil {
		return err
	}
	snap := ledger.Snapshot()
	if snap.ArchivedAt != nil {
		return &domain.AccountNotFoundError{AccountID: accountID}
	}
	valuation := engine.Value(snap, view, s.now())

	apiKey := ""
	if sealed := ledger.APIKeySealed(); sealed != "" {
		apiKey, err = s.sealer.Open(sealed)
		if err != nil {
			return fmt.Errorf("failed to unseal credential: %w", err)
		}
	}

	dc := domain.DecisionContext{
		AccountID:      snap.AccountID,
		AccountName:    snap.Name,
		Provider:       snap.Provider,
		ModelName:      snap.ModelName,
		APIKey:         apiKey,
		Cash:           snap.Cash,
		TotalValue:     valuation.TotalValue,
		InitialCapital: snap.InitialCapital,
		ReturnPct:      valuation.ReturnPct,
		Positions:      snap.Positions,
		Market:         marketList(view, s.symbols),
		AsOf:           s.now(),
	}

	result, err := s.advisor.Decide(ctx, dc)
	if err != nil {
		return fmt.Errorf("failed to get decision: %w", err)
	}
	s.recordConversation(ctx, accountID, result)

	for _, instr := range result.Instructions {
		if _, err := s.processor.Process(ctx, accountID, instr, view); err != nil {
			log.Printf("WARNING: instruction rejected for account %s (%s %s): %v",
				accountID, instr.Signal, instr.Symbol, err)
		}
	}
	return nil
}

// SubmitTrade executes one manually submitted instruction.
func (s *TradingService) SubmitTrade(ctx context.Context, accountID uuid.UUID, instr domain.Instruction) (*domain.TradeRecord, error) {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	return s.processor.Process(ctx, accountID, instr, view)
}

// SnapshotAll appends one equity point per active account. Called on the
// snapshot tick and after each trading cycle.
func (s *TradingService) SnapshotAll(ctx context.Context) {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		log.Printf("ERROR: snapshot tick price fetch: %v", err)
		return
	}

	at := s.now()
	for _, snap := range s.store.Snapshots(false) {
		valuation := engine.Value(snap, view, at)
		point := domain.AccountValueSnapshot{
			AccountID:      snap.AccountID,
			Timestamp:      at,
			TotalValue:     valuation.TotalValue,
			Cash:           valuation.Cash,
			PositionsValue: valuation.PositionsValue,
		}
		if err := s.history.Record(ctx, point); err != nil {
			log.Printf("ERROR: snapshot for account %s: %v", snap.AccountID, err)
		}
	}
}

// AccountValuation marks one account to market.
func (s *TradingService) AccountValuation(ctx context.Context, accountID uuid.UUID) (engine.Valuation, error) {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		return engine.Valuation{}, fmt.Errorf("failed to fetch prices: %w", err)
	}
	snap, err := s.store.Snapshot(accountID)
	if err != nil {
		return engine.Valuation{}, err
	}
	return engine.Value(snap, view, s.now()), nil
}

// Overview values every active account and returns the combined portfolio
// plus the leaderboard.
func (s *TradingService) Overview(ctx context.Context) (engine.CombinedPortfolio, []engine.Valuation, error) {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		return engine.CombinedPortfolio{}, nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	at := s.now()
	snaps := s.store.Snapshots(false)
	valuations := make([]engine.Valuation, 0, len(snaps))
	for _, snap := range snaps {
		valuations = append(valuations, engine.Value(snap, view, at))
	}
	return engine.Combine(valuations, at), engine.Leaderboard(valuations), nil
}

// Chart builds the per-account equity series plus the merged total curve.
func (s *TradingService) Chart(from, to time.Time) ([]engine.ChartSeries, []engine.ChartPoint) {
	series := engine.CombinedChart(s.history, s.store.Snapshots(false), from, to)
	return series, engine.MergedEquityCurve(series)
}

// Market returns the current quotes for the tracked symbols.
func (s *TradingService) Market(ctx context.Context) ([]domain.Quote, error) {
	view, err := s.prices.Prices(ctx, s.symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	return marketList(view, s.symbols), nil
}

// recordConversation appends the prompt/response exchange, best effort.
func (s *TradingService) recordConversation(ctx context.Context, accountID uuid.UUID, result *domain.DecisionResult) {
	if s.conversations == nil {
		return
	}
	record := &domain.ConversationRecord{
		ID:        uuid.New(),
		AccountID: accountID,
		Prompt:    result.Prompt,
		Response:  result.Raw,
		CreatedAt: s.now(),
	}
	if err := s.conversations.Insert(ctx, record); err != nil {
		log.Printf("ERROR: conversation write for account %s: %v", accountID, err)
	}
}

// marketList orders the view by the configured symbol list.
func marketList(view domain.PriceView, symbols []string) []domain.Quote {
	out := make([]domain.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		if q, ok := view[symbol]; ok {
			out = append(out, q)
		}
	}
	return out
}
