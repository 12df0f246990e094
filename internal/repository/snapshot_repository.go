package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"aitradegame/internal/domain"
)

// SnapshotRepositoryImpl implements the SnapshotRepository interface
type SnapshotRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *pgxpool.Pool) domain.SnapshotRepository {
	return &SnapshotRepositoryImpl{db: db}
}

// Insert appends one equity snapshot row
func (r *SnapshotRepositoryImpl) Insert(ctx context.Context, snapshot *domain.AccountValueSnapshot) error {
	query := `
		INSERT INTO account_value_snapshots (
			account_id, timestamp, total_value, cash, positions_value
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := r.db.Exec(ctx, query,
		snapshot.AccountID,
		snapshot.Timestamp,
		snapshot.TotalValue,
		snapshot.Cash,
		snapshot.PositionsValue,
	)

	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Range retrieves snapshots for an account ordered by timestamp ascending
func (r *SnapshotRepositoryImpl) Range(ctx context.Context, accountID uuid.UUID, from, to time.Time, limit int) ([]domain.AccountValueSnapshot, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT account_id, timestamp, total_value, cash, positions_value
		FROM account_value_snapshots
		WHERE account_id = $1
	`)
	args := []interface{}{accountID}
	if !from.IsZero() {
		args = append(args, from)
		sb.WriteString(fmt.Sprintf(" AND timestamp >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		sb.WriteString(fmt.Sprintf(" AND timestamp <= $%d", len(args)))
	}
	sb.WriteString(" ORDER BY timestamp ASC")
	if limit > 0 {
		args = append(args, limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.AccountValueSnapshot
	for rows.Next() {
		var snapshot domain.AccountValueSnapshot
		err := rows.Scan(
			&snapshot.AccountID,
			&snapshot.Timestamp,
			&snapshot.TotalValue,
			&snapshot.Cash,
			&snapshot.PositionsValue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
