package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planstack-io/planstack-engine/pkg/database"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// ChatRepository provides data access for conversation messages keyed by
// (project, user, step).
type ChatRepository interface {
	SaveMessage(ctx context.Context, q database.Querier, msg *models.ChatMessage) error
	SaveMessages(ctx context.Context, q database.Querier, msgs []*models.ChatMessage) error
	GetHistory(ctx context.Context, key models.ConversationKey, limit int) ([]*models.ChatMessage, error)
	Count(ctx context.Context, key models.ConversationKey) (int, error)
	Clear(ctx context.Context, q database.Querier, key models.ConversationKey) error
}

type chatRepository struct{}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository() ChatRepository {
	return &chatRepository{}
}

var _ ChatRepository = (*chatRepository)(nil)

func (r *chatRepository) SaveMessage(ctx context.Context, q database.Querier, msg *models.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO conversation_messages (
			id, project_id, user_id, step, role, content, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.Exec(ctx, query,
		msg.ID, msg.ProjectID, msg.UserID, msg.Step, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// SaveMessages inserts messages in order. Callers pass a transaction as
// the Querier when the messages must land together.
func (r *chatRepository) SaveMessages(ctx context.Context, q database.Querier, msgs []*models.ChatMessage) error {
	for _, msg := range msgs {
		if err := r.SaveMessage(ctx, q, msg); err != nil {
			return err
		}
	}
	return nil
}

// GetHistory returns the most recent messages of a conversation in
// chronological order. A limit of 0 or less returns everything.
func (r *chatRepository) GetHistory(ctx context.Context, key models.ConversationKey, limit int) ([]*models.ChatMessage, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT id, project_id, user_id, step, role, content, created_at
		FROM conversation_messages
		WHERE project_id = $1 AND user_id = $2 AND step = $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	limitArg := any(limit)
	if limit <= 0 {
		limitArg = nil // NULL limit means no limit
	}

	rows, err := scope.Conn.Query(ctx, query, key.ProjectID, key.UserID, key.Step, limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		msg, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	// Newest-first fetch, oldest-first result.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *chatRepository) Count(ctx context.Context, key models.ConversationKey) (int, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no project scope in context")
	}

	var count int
	err := scope.Conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM conversation_messages WHERE project_id = $1 AND user_id = $2 AND step = $3",
		key.ProjectID, key.UserID, key.Step,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *chatRepository) Clear(ctx context.Context, q database.Querier, key models.ConversationKey) error {
	_, err := q.Exec(ctx,
		"DELETE FROM conversation_messages WHERE project_id = $1 AND user_id = $2 AND step = $3",
		key.ProjectID, key.UserID, key.Step,
	)
	if err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

func scanChatMessage(row pgx.Row) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := row.Scan(
		&msg.ID, &msg.ProjectID, &msg.UserID, &msg.Step,
		&msg.Role, &msg.Content, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
