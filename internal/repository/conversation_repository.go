package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"aitradegame/internal/domain"
)

// ConversationRepositoryImpl implements the ConversationRepository interface
type ConversationRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) domain.ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

// Insert appends one conversation record
func (r *ConversationRepositoryImpl) Insert(ctx context.Context, record *domain.ConversationRecord) error {
	query := `
		INSERT INTO conversations (
			id, account_id, prompt, response, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.AccountID,
		record.Prompt,
		record.Response,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	return nil
}

// RecentByAccount retrieves the newest exchanges for an account
func (r *ConversationRepositoryImpl) RecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.ConversationRecord, error) {
	query := `
		SELECT id, account_id, prompt, response, created_at
		FROM conversations
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations by account: %w", err)
	}
	defer rows.Close()

	var records []*domain.ConversationRecord
	for rows.Next() {
		record := &domain.ConversationRecord{}
		err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.Prompt,
			&record.Response,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return records, nil
}
