package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/database"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/repositories"
	"github.com/planstack-io/planstack-engine/pkg/workflow"
)

// DocumentService manages the planning document lifecycle: creation,
// saves with version history, status transitions with their audit trail,
// restores, and deletion.
type DocumentService interface {
	// Create makes a new private document at version 1 with its first
	// version snapshot.
	Create(ctx context.Context, projectID uuid.UUID, step int, title, content string, creatorID uuid.UUID) (*models.PlanningDocument, error)

	// Save updates title and content, bumping the version and appending
	// a version snapshot. Identical input is a no-op.
	Save(ctx context.Context, documentID uuid.UUID, title, content string, actor *models.Actor, changeSummary *string) (*models.PlanningDocument, error)

	// ChangeStatus runs one state-machine transition, appending the
	// audit entry and demoting a prior official sibling when promoting.
	ChangeStatus(ctx context.Context, documentID uuid.UUID, target models.DocumentStatus, actor *models.Actor) (*models.PlanningDocument, error)

	// Restore performs a Save with the content of a historical version,
	// creating a new version rather than rewinding the counter.
	Restore(ctx context.Context, documentID uuid.UUID, version int, actor *models.Actor) (*models.PlanningDocument, error)

	// Delete removes a non-official document with its versions and
	// audit entries.
	Delete(ctx context.Context, documentID uuid.UUID, actor *models.Actor) error

	Get(ctx context.Context, documentID uuid.UUID, actor *models.Actor) (*models.PlanningDocument, error)
	List(ctx context.Context, projectID uuid.UUID, actor *models.Actor) ([]*models.PlanningDocument, error)
	ListVersions(ctx context.Context, documentID uuid.UUID, actor *models.Actor) ([]*models.DocumentVersion, error)
	ListApprovalHistory(ctx context.Context, documentID uuid.UUID, actor *models.Actor) ([]*models.ApprovalHistoryEntry, error)
}

type documentService struct {
	docs      repositories.DocumentRepository
	versions  repositories.VersionRepository
	approvals repositories.ApprovalRepository
	tx        database.TxRunner
	logger    *zap.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docs repositories.DocumentRepository,
	versions repositories.VersionRepository,
	approvals repositories.ApprovalRepository,
	tx database.TxRunner,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		docs:      docs,
		versions:  versions,
		approvals: approvals,
		tx:        tx,
		logger:    logger.Named("documents"),
	}
}

var _ DocumentService = (*documentService)(nil)

func (s *documentService) Create(ctx context.Context, projectID uuid.UUID, step int, title, content string, creatorID uuid.UUID) (*models.PlanningDocument, error) {
	if !models.IsValidWorkflowStep(step) {
		return nil, fmt.Errorf("%w: step %d out of range", apperrors.ErrValidation, step)
	}
	if err := models.ValidateTitleAndContent(title, content); err != nil {
		return nil, err
	}

	doc := &models.PlanningDocument{
		ProjectID: projectID,
		Step:      step,
		Title:     title,
		Content:   content,
		Status:    models.StatusPrivate,
		Version:   1,
		CreatorID: creatorID,
	}

	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		if err := s.docs.Create(ctx, q, doc); err != nil {
			return err
		}
		return s.versions.Create(ctx, q, &models.DocumentVersion{
			DocumentID: doc.ID,
			Version:    1,
			Title:      title,
			Content:    content,
			AuthorID:   creatorID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created planning document",
		zap.String("document_id", doc.ID.String()),
		zap.Int("step", step))
	return doc, nil
}

func (s *documentService) Save(ctx context.Context, documentID uuid.UUID, title, content string, actor *models.Actor, changeSummary *string) (*models.PlanningDocument, error) {
	if err := models.ValidateTitleAndContent(title, content); err != nil {
		return nil, err
	}

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if !doc.IsEditableBy(actor) {
		return nil, fmt.Errorf("%w: document %s is not editable by this user", apperrors.ErrForbidden, documentID)
	}

	// Identical input: no new version, no write.
	if doc.Title == title && doc.Content == content {
		return doc, nil
	}

	doc.Title = title
	doc.Content = content
	doc.Version++

	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		if err := s.docs.Update(ctx, q, doc); err != nil {
			return err
		}
		return s.versions.Create(ctx, q, &models.DocumentVersion{
			DocumentID:    doc.ID,
			Version:       doc.Version,
			Title:         title,
			Content:       content,
			AuthorID:      actor.UserID,
			ChangeSummary: changeSummary,
		})
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *documentService) ChangeStatus(ctx context.Context, documentID uuid.UUID, target models.DocumentStatus, actor *models.Actor) (*models.PlanningDocument, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	isCreator := actor != nil && doc.CreatorID == actor.UserID
	transition, err := workflow.Validate(doc.Status, target, doc.Step, actor, isCreator)
	if err != nil {
		return nil, err
	}

	fromStatus := doc.Status
	doc.Status = target
	if transition.SetApprover {
		now := time.Now()
		doc.ApproverID = &actor.UserID
		doc.ApprovedAt = &now
	}
	if transition.ClearApprover {
		doc.ApproverID = nil
		doc.ApprovedAt = nil
	}

	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		if transition.DemoteOfficialSibling {
			// The demoted document may share a creator with the one
			// being promoted; defer the draft check until commit.
			if err := s.docs.DeferDraftUniqueness(ctx, q); err != nil {
				return err
			}
			if err := s.demoteOfficialSibling(ctx, q, doc); err != nil {
				return err
			}
		}
		if err := s.docs.Update(ctx, q, doc); err != nil {
			return err
		}
		return s.approvals.Create(ctx, q, &models.ApprovalHistoryEntry{
			DocumentID: doc.ID,
			Action:     transition.Action,
			ActorID:    actor.UserID,
			FromStatus: fromStatus,
			ToStatus:   target,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Changed document status",
		zap.String("document_id", doc.ID.String()),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(target)),
		zap.String("action", string(transition.Action)))
	return doc, nil
}

// demoteOfficialSibling moves the current official document for the same
// (project, step) slot back to private. The demotion happens before the
// promotion so the single-official index never sees two holders.
func (s *documentService) demoteOfficialSibling(ctx context.Context, q database.Querier, promoting *models.PlanningDocument) error {
	official, err := s.docs.GetOfficial(ctx, promoting.ProjectID, promoting.Step)
	if err != nil {
		return err
	}
	if official == nil || official.ID == promoting.ID {
		return nil
	}

	official.Status = models.StatusPrivate
	official.ApproverID = nil
	official.ApprovedAt = nil
	return s.docs.Update(ctx, q, official)
}

func (s *documentService) Restore(ctx context.Context, documentID uuid.UUID, version int, actor *models.Actor) (*models.PlanningDocument, error) {
	historical, err := s.versions.GetByNumber(ctx, documentID, version)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Restored from version %d", version)
	return s.Save(ctx, documentID, historical.Title, historical.Content, actor, &summary)
}

func (s *documentService) Delete(ctx context.Context, documentID uuid.UUID, actor *models.Actor) error {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if doc.IsOfficial() {
		return fmt.Errorf("%w: official documents cannot be deleted", apperrors.ErrConflict)
	}
	if actor == nil || (!actor.IsAdmin && doc.CreatorID != actor.UserID) {
		return fmt.Errorf("%w: only the creator or an admin may delete a document", apperrors.ErrForbidden)
	}

	// Versions and audit entries go with the document via cascade.
	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		return s.docs.Delete(ctx, q, documentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Deleted planning document",
		zap.String("document_id", documentID.String()))
	return nil
}

func (s *documentService) Get(ctx context.Context, documentID uuid.UUID, actor *models.Actor) (*models.PlanningDocument, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !isVisibleTo(doc, actor) {
		return nil, fmt.Errorf("%w: document %s is private", apperrors.ErrForbidden, documentID)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, projectID uuid.UUID, actor *models.Actor) ([]*models.PlanningDocument, error) {
	docs, err := s.docs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.PlanningDocument, 0, len(docs))
	for _, doc := range docs {
		if isVisibleTo(doc, actor) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

func (s *documentService) ListVersions(ctx context.Context, documentID uuid.UUID, actor *models.Actor) ([]*models.DocumentVersion, error) {
	if _, err := s.Get(ctx, documentID, actor); err != nil {
		return nil, err
	}
	return s.versions.ListByDocument(ctx, documentID)
}

func (s *documentService) ListApprovalHistory(ctx context.Context, documentID uuid.UUID, actor *models.Actor) ([]*models.ApprovalHistoryEntry, error) {
	if _, err := s.Get(ctx, documentID, actor); err != nil {
		return nil, err
	}
	return s.approvals.ListByDocument(ctx, documentID)
}

// isVisibleTo implements document visibility: private drafts belong to
// their creator, everything that entered the approval flow is readable
// by the whole project.
func isVisibleTo(doc *models.PlanningDocument, actor *models.Actor) bool {
	if actor == nil {
		return false
	}
	if doc.Status != models.StatusPrivate {
		return true
	}
	return actor.IsAdmin || doc.CreatorID == actor.UserID
}
