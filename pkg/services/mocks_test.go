package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/planstack-io/planstack-engine/pkg/database"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// Function-field mocks. Set the fields a test needs; unset fields return
// zero values.

type mockDocumentRepository struct {
	CreateFunc            func(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error
	UpdateFunc            func(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error
	DeleteFunc            func(ctx context.Context, q database.Querier, id uuid.UUID) error
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*models.PlanningDocument, error)
	ListByProjectFunc     func(ctx context.Context, projectID uuid.UUID) ([]*models.PlanningDocument, error)
	GetOfficialFunc       func(ctx context.Context, projectID uuid.UUID, step int) (*models.PlanningDocument, error)
	GetDraftByCreatorFunc func(ctx context.Context, projectID uuid.UUID, step int, creatorID uuid.UUID) (*models.PlanningDocument, error)
	ListSiblingsFunc      func(ctx context.Context, projectID uuid.UUID, excludeID *uuid.UUID) ([]*models.PlanningDocument, error)

	CreateCalls               int
	UpdateCalls               int
	DeleteCalls               int
	DeferDraftUniquenessCalls int
}

func (m *mockDocumentRepository) DeferDraftUniqueness(ctx context.Context, q database.Querier) error {
	m.DeferDraftUniquenessCalls++
	return nil
}

func (m *mockDocumentRepository) Create(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q, doc)
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	return nil
}

func (m *mockDocumentRepository) Update(ctx context.Context, q database.Querier, doc *models.PlanningDocument) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, q, doc)
	}
	return nil
}

func (m *mockDocumentRepository) Delete(ctx context.Context, q database.Querier, id uuid.UUID) error {
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, q, id)
	}
	return nil
}

func (m *mockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlanningDocument, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDocumentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.PlanningDocument, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockDocumentRepository) GetOfficial(ctx context.Context, projectID uuid.UUID, step int) (*models.PlanningDocument, error) {
	if m.GetOfficialFunc != nil {
		return m.GetOfficialFunc(ctx, projectID, step)
	}
	return nil, nil
}

func (m *mockDocumentRepository) GetDraftByCreator(ctx context.Context, projectID uuid.UUID, step int, creatorID uuid.UUID) (*models.PlanningDocument, error) {
	if m.GetDraftByCreatorFunc != nil {
		return m.GetDraftByCreatorFunc(ctx, projectID, step, creatorID)
	}
	return nil, nil
}

func (m *mockDocumentRepository) ListSiblings(ctx context.Context, projectID uuid.UUID, excludeID *uuid.UUID) ([]*models.PlanningDocument, error) {
	if m.ListSiblingsFunc != nil {
		return m.ListSiblingsFunc(ctx, projectID, excludeID)
	}
	return nil, nil
}

type mockVersionRepository struct {
	CreateFunc         func(ctx context.Context, q database.Querier, version *models.DocumentVersion) error
	ListByDocumentFunc func(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentVersion, error)
	GetByNumberFunc    func(ctx context.Context, documentID uuid.UUID, version int) (*models.DocumentVersion, error)

	CreateCalls int
	Created     []*models.DocumentVersion
}

func (m *mockVersionRepository) Create(ctx context.Context, q database.Querier, version *models.DocumentVersion) error {
	m.CreateCalls++
	m.Created = append(m.Created, version)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q, version)
	}
	return nil
}

func (m *mockVersionRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentVersion, error) {
	if m.ListByDocumentFunc != nil {
		return m.ListByDocumentFunc(ctx, documentID)
	}
	return nil, nil
}

func (m *mockVersionRepository) GetByNumber(ctx context.Context, documentID uuid.UUID, version int) (*models.DocumentVersion, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, documentID, version)
	}
	return nil, nil
}

type mockApprovalRepository struct {
	CreateFunc         func(ctx context.Context, q database.Querier, entry *models.ApprovalHistoryEntry) error
	ListByDocumentFunc func(ctx context.Context, documentID uuid.UUID) ([]*models.ApprovalHistoryEntry, error)

	CreateCalls int
	Created     []*models.ApprovalHistoryEntry
}

func (m *mockApprovalRepository) Create(ctx context.Context, q database.Querier, entry *models.ApprovalHistoryEntry) error {
	m.CreateCalls++
	m.Created = append(m.Created, entry)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q, entry)
	}
	return nil
}

func (m *mockApprovalRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ApprovalHistoryEntry, error) {
	if m.ListByDocumentFunc != nil {
		return m.ListByDocumentFunc(ctx, documentID)
	}
	return nil, nil
}

type mockChatRepository struct {
	SaveMessageFunc  func(ctx context.Context, q database.Querier, msg *models.ChatMessage) error
	SaveMessagesFunc func(ctx context.Context, q database.Querier, msgs []*models.ChatMessage) error
	GetHistoryFunc   func(ctx context.Context, key models.ConversationKey, limit int) ([]*models.ChatMessage, error)
	CountFunc        func(ctx context.Context, key models.ConversationKey) (int, error)
	ClearFunc        func(ctx context.Context, q database.Querier, key models.ConversationKey) error

	SaveMessagesCalls int
	Saved             []*models.ChatMessage
	ClearCalls        int
}

func (m *mockChatRepository) SaveMessage(ctx context.Context, q database.Querier, msg *models.ChatMessage) error {
	m.Saved = append(m.Saved, msg)
	if m.SaveMessageFunc != nil {
		return m.SaveMessageFunc(ctx, q, msg)
	}
	return nil
}

func (m *mockChatRepository) SaveMessages(ctx context.Context, q database.Querier, msgs []*models.ChatMessage) error {
	m.SaveMessagesCalls++
	m.Saved = append(m.Saved, msgs...)
	if m.SaveMessagesFunc != nil {
		return m.SaveMessagesFunc(ctx, q, msgs)
	}
	return nil
}

func (m *mockChatRepository) GetHistory(ctx context.Context, key models.ConversationKey, limit int) ([]*models.ChatMessage, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, key, limit)
	}
	return nil, nil
}

func (m *mockChatRepository) Count(ctx context.Context, key models.ConversationKey) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, key)
	}
	return 0, nil
}

func (m *mockChatRepository) Clear(ctx context.Context, q database.Querier, key models.ConversationKey) error {
	m.ClearCalls++
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, q, key)
	}
	return nil
}

// mockTxRunner invokes the function directly without a transaction.
type mockTxRunner struct {
	WithTxFunc func(ctx context.Context, fn func(q database.Querier) error) error

	WithTxCalls int
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(q database.Querier) error) error {
	m.WithTxCalls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return fn(nil)
}
