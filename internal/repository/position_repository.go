package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"aitradegame/internal/domain"
)

// PositionRepositoryImpl implements the PositionRepository interface
type PositionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *pgxpool.Pool) domain.PositionRepository {
	return &PositionRepositoryImpl{db: db}
}

// Upsert writes the current state of an open position
func (r *PositionRepositoryImpl) Upsert(ctx context.Context, accountID uuid.UUID, position domain.Position) error {
	query := `
		INSERT INTO positions (
			account_id, symbol, side, quantity, avg_entry_price,
			leverage, opened_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (account_id, symbol, side) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    avg_entry_price = EXCLUDED.avg_entry_price,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		accountID,
		position.Symbol,
		position.Side,
		position.Quantity,
		position.AvgEntryPrice,
		position.Leverage,
		position.OpenedAt,
		position.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	return nil
}

// Delete removes a fully closed position
func (r *PositionRepositoryImpl) Delete(ctx context.Context, accountID uuid.UUID, symbol string, side domain.Side) error {
	query := `
		DELETE FROM positions
		WHERE account_id = $1 AND symbol = $2 AND side = $3
	`

	_, err := r.db.Exec(ctx, query, accountID, symbol, side)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	return nil
}

// GetByAccount retrieves all open positions for an account
func (r *PositionRepositoryImpl) GetByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Position, error) {
	query := `
		SELECT symbol, side, quantity, avg_entry_price, leverage,
		       opened_at, updated_at
		FROM positions
		WHERE account_id = $1
		ORDER BY symbol ASC, side ASC
	`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions by account: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var position domain.Position
		err := rows.Scan(
			&position.Symbol,
			&position.Side,
			&position.Quantity,
			&position.AvgEntryPrice,
			&position.Leverage,
			&position.OpenedAt,
			&position.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}
