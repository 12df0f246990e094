package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError rejects an instruction before any lock is taken or any
// state is touched: bad quantity, bad leverage, unknown symbol, leverage
// mismatch on an add-to-position.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// InsufficientFundsError rejects an open whose margin+fee exceeds cash.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient cash: need %s, have %s", e.Required, e.Available)
}

// NoSuchPositionError rejects a close on a position that does not exist.
type NoSuchPositionError struct {
	Symbol string
	Side   Side
}

func (e *NoSuchPositionError) Error() string {
	if e.Side == "" {
		return fmt.Sprintf("no open position for %s", e.Symbol)
	}
	return fmt.Sprintf("no open %s position for %s", e.Side, e.Symbol)
}

// AccountNotFoundError reports an operation against an unknown or archived
// account.
type AccountNotFoundError struct {
	AccountID uuid.UUID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

// PriceUnavailableError rejects a trade when the oracle has no usable price
// for the symbol. Valuation never returns this; it degrades to stale instead.
type PriceUnavailableError struct {
	Symbol string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price unavailable for %s", e.Symbol)
}

// ConcurrencyError reports that the per-account lock could not be acquired
// within the bounded wait. The caller decides whether to retry.
type ConcurrencyError struct {
	AccountID uuid.UUID
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("account %s is busy: trade already in flight", e.AccountID)
}

// IntegrityError reports a broken invariant: an out-of-order snapshot append
// or a ledger state that fails its own consistency check. Always fatal to the
// operation that detected it, never auto-repaired.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.Reason
}
