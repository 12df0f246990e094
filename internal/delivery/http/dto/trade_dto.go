package dto

import "github.com/shopspring/decimal"

// TradeRequest represents a manually submitted trade instruction
type TradeRequest struct {
	Signal   string          `json:"signal"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Leverage decimal.Decimal `json:"leverage"`
	Side     string          `json:"side,omitempty"`
}

// TradeOutput represents a trade record in API responses
type TradeOutput struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Symbol      string          `json:"symbol"`
	Signal      string          `json:"signal"`
	Side        string          `json:"side"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Leverage    decimal.Decimal `json:"leverage"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Fee         decimal.Decimal `json:"fee"`
	CreatedAt   string          `json:"created_at"`
}
