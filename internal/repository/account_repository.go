package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// AccountRepositoryImpl implements the AccountRepository interface
type AccountRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create persists a new account
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, name, provider, model_name, api_key_sealed,
			initial_capital, cash, realized_pnl, total_fees, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Name,
		account.Provider,
		account.ModelName,
		account.APIKeySealed,
		account.InitialCapital,
		account.Cash,
		account.RealizedPnL,
		account.TotalFees,
		account.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID, archived or not
func (r *AccountRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, name, provider, model_name, api_key_sealed,
		       initial_capital, cash, realized_pnl, total_fees,
		       created_at, archived_at
		FROM accounts
		WHERE id = $1
	`

	account := &domain.Account{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Provider,
		&account.ModelName,
		&account.APIKeySealed,
		&account.InitialCapital,
		&account.Cash,
		&account.RealizedPnL,
		&account.TotalFees,
		&account.CreatedAt,
		&account.ArchivedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.AccountNotFoundError{AccountID: id}
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return account, nil
}

// GetActive retrieves all non-archived accounts
func (r *AccountRepositoryImpl) GetActive(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT id, name, provider, model_name, api_key_sealed,
		       initial_capital, cash, realized_pnl, total_fees,
		       created_at, archived_at
		FROM accounts
		WHERE archived_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Provider,
			&account.ModelName,
			&account.APIKeySealed,
			&account.InitialCapital,
			&account.Cash,
			&account.RealizedPnL,
			&account.TotalFees,
			&account.CreatedAt,
			&account.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateBalances writes the authoritative cash/realized/fees columns
func (r *AccountRepositoryImpl) UpdateBalances(ctx context.Context, id uuid.UUID, cash, realized, fees decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET cash = $1,
		    realized_pnl = $2,
		    total_fees = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query, cash, realized, fees, id)
	if err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}

	return nil
}

// Archive marks an account as removed; the row is kept for the audit trail
func (r *AccountRepositoryImpl) Archive(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE accounts
		SET archived_at = $1
		WHERE id = $2 AND archived_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to archive account: %w", err)
	}

	return nil
}
