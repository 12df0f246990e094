package dto

import "github.com/shopspring/decimal"

// CreateAccountRequest represents the account creation payload
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Provider       string          `json:"provider"`
	ModelName      string          `json:"model_name"`
	APIKey         string          `json:"api_key"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
}

// AccountOutput represents an account in API responses. The credential never
// leaves the server.
type AccountOutput struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Provider       string          `json:"provider"`
	ModelName      string          `json:"model_name"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
	Cash           decimal.Decimal `json:"cash"`
	CreatedAt      string          `json:"created_at"`
}
