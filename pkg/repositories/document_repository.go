package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/database"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// DocumentRepository provides data access for planning documents.
// Mutation methods take an explicit Querier so the lifecycle service can
// group them with version and audit writes in one transaction.
type DocumentRepository interface {
	Create(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error
	Update(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error
	Delete(ctx context.Context, q database.Querier, id uuid.UUID) error

	// DeferDraftUniqueness postpones the one-draft-per-creator check to
	// commit for the current transaction. Required when demoting an
	// official document whose creator already holds the replacement.
	DeferDraftUniqueness(ctx context.Context, q database.Querier) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.PlanningDocument, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.PlanningDocument, error)
	GetOfficial(ctx context.Context, projectID uuid.UUID, step int) (*models.PlanningDocument, error)
	GetDraftByCreator(ctx context.Context, projectID uuid.UUID, step int, creatorID uuid.UUID) (*models.PlanningDocument, error)
	ListSiblings(ctx context.Context, projectID uuid.UUID, excludeID *uuid.UUID) ([]*models.PlanningDocument, error)
}

type documentRepository struct{}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

var _ DocumentRepository = (*documentRepository)(nil)

const documentColumns = `id, project_id, step, title, content, status, version,
		creator_id, approver_id, created_at, updated_at, approved_at`

func (r *documentRepository) Create(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `
		INSERT INTO planning_documents (
			id, project_id, step, title, content, status, version,
			creator_id, approver_id, created_at, updated_at, approved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := q.Exec(ctx, query,
		doc.ID, doc.ProjectID, doc.Step, doc.Title, doc.Content, doc.Status, doc.Version,
		doc.CreatorID, doc.ApproverID, doc.CreatedAt, doc.UpdatedAt, doc.ApprovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a draft for this step already exists", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) Update(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error {
	doc.UpdatedAt = time.Now()

	query := `
		UPDATE planning_documents
		SET title = $2, content = $3, status = $4, version = $5,
		    approver_id = $6, updated_at = $7, approved_at = $8
		WHERE id = $1`

	result, err := q.Exec(ctx, query,
		doc.ID, doc.Title, doc.Content, doc.Status, doc.Version,
		doc.ApproverID, doc.UpdatedAt, doc.ApprovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: another document already holds this slot", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, doc.ID)
	}
	return nil
}

func (r *documentRepository) DeferDraftUniqueness(ctx context.Context, q database.Querier) error {
	_, err := q.Exec(ctx, "SET CONSTRAINTS planning_documents_one_draft_per_creator DEFERRED")
	if err != nil {
		return fmt.Errorf("failed to defer draft uniqueness check: %w", err)
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, q database.Querier, id uuid.UUID) error {
	result, err := q.Exec(ctx, "DELETE FROM planning_documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlanningDocument, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `SELECT ` + documentColumns + ` FROM planning_documents WHERE id = $1`
	doc, err := scanDocument(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.PlanningDocument, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT ` + documentColumns + `
		FROM planning_documents
		WHERE project_id = $1
		ORDER BY step, created_at`

	rows, err := scope.Conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *documentRepository) GetOfficial(ctx context.Context, projectID uuid.UUID, step int) (*models.PlanningDocument, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT ` + documentColumns + `
		FROM planning_documents
		WHERE project_id = $1 AND step = $2 AND status = $3`

	doc, err := scanDocument(scope.Conn.QueryRow(ctx, query, projectID, step, models.StatusOfficial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No official document for this step
		}
		return nil, fmt.Errorf("failed to get official document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) GetDraftByCreator(ctx context.Context, projectID uuid.UUID, step int, creatorID uuid.UUID) (*models.PlanningDocument, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT ` + documentColumns + `
		FROM planning_documents
		WHERE project_id = $1 AND step = $2 AND creator_id = $3 AND status <> $4`

	doc, err := scanDocument(scope.Conn.QueryRow(ctx, query, projectID, step, creatorID, models.StatusOfficial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No draft for this creator
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) ListSiblings(ctx context.Context, projectID uuid.UUID, excludeID *uuid.UUID) ([]*models.PlanningDocument, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}

	query := `
		SELECT ` + documentColumns + `
		FROM planning_documents
		WHERE project_id = $1 AND status IN ($2, $3) AND id <> $4
		ORDER BY step, created_at`

	rows, err := scope.Conn.Query(ctx, query, projectID, models.StatusOfficial, models.StatusPendingApproval, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to list siblings: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func scanDocument(row pgx.Row) (*models.PlanningDocument, error) {
	var doc models.PlanningDocument
	err := row.Scan(
		&doc.ID, &doc.ProjectID, &doc.Step, &doc.Title, &doc.Content,
		&doc.Status, &doc.Version, &doc.CreatorID, &doc.ApproverID,
		&doc.CreatedAt, &doc.UpdatedAt, &doc.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]*models.PlanningDocument, error) {
	var docs []*models.PlanningDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return docs, nil
}
