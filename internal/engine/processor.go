package engine

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// DefaultLockTimeout bounds how long a trade waits for an account whose
// previous trade is still in flight.
const DefaultLockTimeout = 5 * time.Second

// TradeProcessor runs the trade state machine against account ledgers.
// Every accepted instruction follows the same path: validate everything
// against a consistent view, apply the balance and book mutations in one
// commit, then write through to storage. A rejected instruction leaves the
// ledger untouched.
type TradeProcessor struct {
	store       *Store
	feeRate     decimal.Decimal
	lockTimeout time.Duration
	now         func() time.Time
}

// NewTradeProcessor wires a processor over the store. feeRate is the taker
// fee charged on both opens and closes, e.g. 0.001 for 10 bps.
func NewTradeProcessor(store *Store, feeRate decimal.Decimal) *TradeProcessor {
	return &TradeProcessor{
		store:       store,
		feeRate:     feeRate,
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
	}
}

// Process executes one instruction for one account and returns the resulting
// trade record. Prices must be captured by the caller before the call; the
// processor never fetches while holding the account lock. A hold signal is
// rejected here: it should have been filtered at the boundary.
func (p *TradeProcessor) Process(ctx context.Context, accountID uuid.UUID, instr domain.Instruction, prices domain.PriceView) (*domain.TradeRecord, error) {
	if instr.Signal == domain.SignalHold {
		return nil, &domain.ValidationError{Field: "signal", Reason: "hold produces no trade"}
	}
	if err := instr.Validate(); err != nil {
		return nil, err
	}

	ledger, err := p.store.Ledger(accountID)
	if err != nil {
		return nil, err
	}
	if ledger.Archived() {
		return nil, &domain.AccountNotFoundError{AccountID: accountID}
	}

	price, err := tradablePrice(prices, instr.Symbol)
	if err != nil {
		return nil, err
	}

	if err := ledger.acquire(p.lockTimeout); err != nil {
		return nil, err
	}
	defer ledger.release()

	var record *domain.TradeRecord
	if instr.Signal.Opens() {
		record, err = p.applyOpen(ledger, instr, price)
	} else {
		record, err = p.applyClose(ledger, instr, price)
	}
	if err != nil {
		return nil, err
	}

	p.writeThrough(ctx, ledger, record)
	log.Printf("[OK] Trade %s: %s %s %s @ %s (pnl=%s fee=%s)",
		record.ID, record.Signal, record.Quantity, record.Symbol, record.Price,
		record.RealizedPnL, record.Fee)
	return record, nil
}

// tradablePrice resolves a symbol's quote for trading. Stale quotes value
// portfolios but never fill trades.
func tradablePrice(prices domain.PriceView, symbol string) (decimal.Decimal, error) {
	q, ok := prices[symbol]
	if !ok || q.Stale || !q.Price.IsPositive() {
		return decimal.Zero, &domain.PriceUnavailableError{Symbol: symbol}
	}
	return q.Price, nil
}

// applyOpen opens or adds to a position. The caller holds the trade lock, so
// the validation reads are stable; the mutations commit inside one write
// window.
//
//	margin = qty * price / leverage
//	fee    = qty * price * fee_rate
//	cash  -= margin + fee
func (p *TradeProcessor) applyOpen(l *AccountLedger, instr domain.Instruction, price decimal.Decimal) (*domain.TradeRecord, error) {
	side := instr.Signal.Side()
	notional := instr.Quantity.Mul(price)
	margin := notional.Div(instr.Leverage)
	fee := notional.Mul(p.feeRate)
	required := margin.Add(fee)

	if existing, ok := l.book.Get(instr.Symbol, side); ok && !existing.Leverage.Equal(instr.Leverage) {
		return nil, &domain.ValidationError{
			Field:  "leverage",
			Reason: "must match the open position's leverage " + existing.Leverage.String() + "x",
		}
	}
	if l.cash.LessThan(required) {
		return nil, &domain.InsufficientFundsError{Required: required, Available: l.cash}
	}

	at := p.now()
	l.mu.Lock()
	if err := l.book.Upsert(instr.Symbol, side, instr.Quantity, price, instr.Leverage, at); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.cash = l.cash.Sub(required)
	l.totalFees = l.totalFees.Add(fee)
	l.mu.Unlock()

	return &domain.TradeRecord{
		ID:          uuid.New(),
		AccountID:   l.accountID,
		Symbol:      instr.Symbol,
		Signal:      instr.Signal,
		Side:        side,
		Quantity:    instr.Quantity,
		Price:       price,
		Leverage:    instr.Leverage,
		RealizedPnL: decimal.Zero,
		Fee:         fee,
		CreatedAt:   at,
	}, nil
}

// applyClose closes a position in full or in part at the execution price.
// Realized pnl is gross, computed against the volume-weighted entry; the
// close fee is tracked separately so fee drag stays visible.
//
//	pnl    = (price - avg_entry) * qty   (sign flipped for shorts)
//	margin = qty * avg_entry / leverage
//	fee    = qty * price * fee_rate
//	cash  += margin + pnl - fee
func (p *TradeProcessor) applyClose(l *AccountLedger, instr domain.Instruction, price decimal.Decimal) (*domain.TradeRecord, error) {
	side, err := resolveCloseSide(l.book, instr)
	if err != nil {
		return nil, err
	}
	pos, ok := l.book.Get(instr.Symbol, side)
	if !ok {
		return nil, &domain.NoSuchPositionError{Symbol: instr.Symbol, Side: side}
	}

	qty := instr.Quantity
	if qty.IsZero() {
		qty = pos.Quantity
	}
	if qty.GreaterThan(pos.Quantity) {
		return nil, &domain.ValidationError{
			Field:  "quantity",
			Reason: "exceeds open quantity " + pos.Quantity.String(),
		}
	}

	pnl := price.Sub(pos.AvgEntryPrice).Mul(qty)
	if side == domain.SideShort {
		pnl = pnl.Neg()
	}
	marginReleased := qty.Mul(pos.AvgEntryPrice).Div(pos.Leverage)
	fee := qty.Mul(price).Mul(p.feeRate)

	at := p.now()
	l.mu.Lock()
	if err := l.book.Reduce(instr.Symbol, side, qty, at); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.cash = l.cash.Add(marginReleased).Add(pnl).Sub(fee)
	l.realizedPnL = l.realizedPnL.Add(pnl)
	l.totalFees = l.totalFees.Add(fee)
	l.mu.Unlock()

	return &domain.TradeRecord{
		ID:          uuid.New(),
		AccountID:   l.accountID,
		Symbol:      instr.Symbol,
		Signal:      domain.SignalClose,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		Leverage:    pos.Leverage,
		RealizedPnL: pnl,
		Fee:         fee,
		CreatedAt:   at,
	}, nil
}

// resolveCloseSide picks which side a close targets. An explicit side wins;
// otherwise the single open side is used, and a hedged book (both sides
// open) must be disambiguated by the caller.
func resolveCloseSide(book *PositionBook, instr domain.Instruction) (domain.Side, error) {
	if instr.Side != "" {
		return instr.Side, nil
	}
	_, hasLong := book.Get(instr.Symbol, domain.SideLong)
	_, hasShort := book.Get(instr.Symbol, domain.SideShort)
	switch {
	case hasLong && hasShort:
		return "", &domain.ValidationError{
			Field:  "side",
			Reason: "required: both long and short are open for " + instr.Symbol,
		}
	case hasLong:
		return domain.SideLong, nil
	case hasShort:
		return domain.SideShort, nil
	default:
		return "", &domain.NoSuchPositionError{Symbol: instr.Symbol}
	}
}

// writeThrough pushes the committed trade to storage. Failures are logged and
// do not unwind the trade; the in-memory ledger is the source of truth.
func (p *TradeProcessor) writeThrough(ctx context.Context, l *AccountLedger, record *domain.TradeRecord) {
	if p.store.persist == nil {
		return
	}
	persist := p.store.persist

	if err := persist.RecordTrade(ctx, record); err != nil {
		log.Printf("ERROR: trade write-through for account %s: %v", l.accountID, err)
	}
	if pos, ok := l.book.Get(record.Symbol, record.Side); ok {
		if err := persist.SavePosition(ctx, l.accountID, pos); err != nil {
			log.Printf("ERROR: position write-through for account %s: %v", l.accountID, err)
		}
	} else {
		if err := persist.DeletePosition(ctx, l.accountID, record.Symbol, record.Side); err != nil {
			log.Printf("ERROR: position delete write-through for account %s: %v", l.accountID, err)
		}
	}
	snap := l.Snapshot()
	if err := persist.UpdateBalances(ctx, l.accountID, snap.Cash, snap.RealizedPnL, snap.TotalFees); err != nil {
		log.Printf("ERROR: balance write-through for account %s: %v", l.accountID, err)
	}
}
