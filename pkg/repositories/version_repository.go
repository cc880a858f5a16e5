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

// VersionRepository provides data access for document version snapshots.
type VersionRepository interface {
	Create(ctx context.Context, q database.Querier, version *models.DocumentVersion) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentVersion, error)
	GetByNumber(ctx context.Context, documentID uuid.UUID, version int) (*models.DocumentVersion, error)
}

type versionRepository struct{}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository() VersionRepository {
	return &versionRepository{}
}

var _ VersionRepository = (*versionRepository)(nil)

func (r *versionRepository) Create(ctx context.Context, q database.Querier, version *models.DocumentVersion) error {
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	version.CreatedAt = time.Now()

	query := `
		INSERT INTO document_versions (
			id, document_id, version, title, content, author_id, change_summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.Exec(ctx, query,
		version.ID, version.DocumentID, version.Version, version.Title,
		version.Content, version.AuthorID, version.ChangeSummary, version.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: version %d already recorded", apperrors.ErrConflict, version.Version)
		}
		return fmt.Errorf("failed to create version: %w", err)
	}
	return nil
}

func (r *versionRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentVersion, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT id, document_id, version, title, content, author_id, change_summary, created_at
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version`

	rows, err := scope.Conn.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read versions: %w", err)
	}
	return versions, nil
}

func (r *versionRepository) GetByNumber(ctx context.Context, documentID uuid.UUID, version int) (*models.DocumentVersion, error) {
	scope, ok := database.GetProjectScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no project scope in context")
	}

	query := `
		SELECT id, document_id, version, title, content, author_id, change_summary, created_at
		FROM document_versions
		WHERE document_id = $1 AND version = $2`

	v, err := scanVersion(scope.Conn.QueryRow(ctx, query, documentID, version))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: version %d of document %s", apperrors.ErrNotFound, version, documentID)
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

func scanVersion(row pgx.Row) (*models.DocumentVersion, error) {
	var v models.DocumentVersion
	err := row.Scan(
		&v.ID, &v.DocumentID, &v.Version, &v.Title, &v.Content,
		&v.AuthorID, &v.ChangeSummary, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
