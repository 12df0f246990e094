package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"aitradegame/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface
type TradeRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// Insert appends one trade record
func (r *TradeRepositoryImpl) Insert(ctx context.Context, record *domain.TradeRecord) error {
	query := `
		INSERT INTO trades (
			id, account_id, symbol, signal, side, quantity,
			price, leverage, realized_pnl, fee, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.AccountID,
		record.Symbol,
		record.Signal,
		record.Side,
		record.Quantity,
		record.Price,
		record.Leverage,
		record.RealizedPnL,
		record.Fee,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

// RecentByAccount retrieves the newest trade records for an account
func (r *TradeRepositoryImpl) RecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.TradeRecord, error) {
	query := `
		SELECT id, account_id, symbol, signal, side, quantity,
		       price, leverage, realized_pnl, fee, created_at
		FROM trades
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by account: %w", err)
	}
	defer rows.Close()

	var records []*domain.TradeRecord
	for rows.Next() {
		record := &domain.TradeRecord{}
		err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.Symbol,
			&record.Signal,
			&record.Side,
			&record.Quantity,
			&record.Price,
			&record.Leverage,
			&record.RealizedPnL,
			&record.Fee,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return records, nil
}
