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

// ApprovalRepository provides data access for the approval audit trail.
// Entries are append-only; nothing ever updates or deletes them directly.
type ApprovalRepository interface {
	Create(ctx context.Context, q database.Querier, entry *models.ApprovalHistoryEntry) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ApprovalHistoryEntry, error)
}

type approvalRepository struct{}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository() ApprovalRepository {
	return &approvalRepository{}
}

var _ ApprovalRepository = (*approvalRepository)(nil)

func (r *approvalRepository) Create(ctx context.Context, q database.Querier, entry *models.ApprovalHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO approval_history (
			id, document_id, action, actor_id, from_status, to_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.Exec(ctx, query,
		entry.ID, entry.DocumentID, entry.Action, entry.ActorID,
		entry.FromStatus, entry.ToStatus, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create approval entry: %w", err)
	}
	return nil
}

func (r *approvalRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ApprovalHistoryEntry, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT id, document_id, action, actor_id, from_status, to_status, created_at
		FROM approval_history
		WHERE document_id = $1
		ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval history: %w", err)
	}
	defer rows.Close()

	var entries []*models.ApprovalHistoryEntry
	for rows.Next() {
		entry, err := scanApprovalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read approval history: %w", err)
	}
	return entries, nil
}

func scanApprovalEntry(row pgx.Row) (*models.ApprovalHistoryEntry, error) {
	var entry models.ApprovalHistoryEntry
	err := row.Scan(
		&entry.ID, &entry.DocumentID, &entry.Action, &entry.ActorID,
		&entry.FromStatus, &entry.ToStatus, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
