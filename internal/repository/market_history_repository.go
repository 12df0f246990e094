package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"aitradegame/internal/domain"
)

// MarketHistoryRepositoryImpl implements the MarketHistoryRepository interface
type MarketHistoryRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewMarketHistoryRepository creates a new MarketHistoryRepository
func NewMarketHistoryRepository(db *pgxpool.Pool) domain.MarketHistoryRepository {
	return &MarketHistoryRepositoryImpl{db: db}
}

// Insert stores one price observation
func (r *MarketHistoryRepositoryImpl) Insert(ctx context.Context, point *domain.PricePoint) error {
	query := `
		INSERT INTO market_history (
			symbol, price, change_24h, recorded_at
		) VALUES (
			$1, $2, $3, $4
		)
	`

	_, err := r.db.Exec(ctx, query,
		point.Symbol,
		point.Price,
		point.Change24h,
		point.RecordedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert market history point: %w", err)
	}

	return nil
}

// Query retrieves points for a symbol ordered by recorded_at descending
func (r *MarketHistoryRepositoryImpl) Query(ctx context.Context, symbol string, start, end time.Time, limit int) ([]domain.PricePoint, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT symbol, price, change_24h, recorded_at
		FROM market_history
		WHERE symbol = $1
	`)
	args := []interface{}{symbol}
	if !start.IsZero() {
		args = append(args, start)
		sb.WriteString(fmt.Sprintf(" AND recorded_at >= $%d", len(args)))
	}
	if !end.IsZero() {
		args = append(args, end)
		sb.WriteString(fmt.Sprintf(" AND recorded_at <= $%d", len(args)))
	}
	sb.WriteString(" ORDER BY recorded_at DESC")
	if limit > 0 {
		args = append(args, limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query market history: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var point domain.PricePoint
		err := rows.Scan(
			&point.Symbol,
			&point.Price,
			&point.Change24h,
			&point.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market history point: %w", err)
		}
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market history: %w", err)
	}

	return points, nil
}
