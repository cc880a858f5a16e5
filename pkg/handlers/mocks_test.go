package handlers

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/planstack-io/planstack-engine/pkg/auth"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// ============================================================================
// Request Helpers
// ============================================================================

// withActor puts an authenticated actor into the request context, the
// way the auth middleware would.
func withActor(req *http.Request, actor *models.Actor) *http.Request {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: actor.UserID.String()},
		Role:             actor.Role,
		IsAdmin:          actor.IsAdmin,
	}
	ctx := context.WithValue(req.Context(), auth.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func plannerActor() *models.Actor {
	return &models.Actor{UserID: uuid.New(), Role: models.RoleServicePlanning}
}

// ============================================================================
// Service Mocks
// ============================================================================

// mockDocumentService is a simple mock for unit tests (without database context).
type mockDocumentService struct {
	document     *models.PlanningDocument
	documents    []*models.PlanningDocument
	versions     []*models.DocumentVersion
	history      []*models.ApprovalHistoryEntry
	err          error
	deleteErr    error
	lastStatus   models.DocumentStatus
	lastVersion  int
	deleteCalled bool
}

func (m *mockDocumentService) Create(ctx context.Context, projectID uuid.UUID, step int, title, content string, creatorID uuid.UUID) (*models.PlanningDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) Save(ctx context.Context, documentID uuid.UUID, title, content string, actor *models.Actor, changeSummary *string) (*models.PlanningDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) ChangeStatus(ctx context.Context, documentID uuid.UUID, target models.DocumentStatus, actor *models.Actor) (*models.PlanningDocument, error) {
	m.lastStatus = target
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) Restore(ctx context.Context, documentID uuid.UUID, version int, actor *models.Actor) (*models.PlanningDocument, error) {
	m.lastVersion = version
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, documentID uuid.UUID, actor *models.Actor) error {
	m.deleteCalled = true
	return m.deleteErr
}

func (m *mockDocumentService) Get(ctx context.Context, documentID uuid.UUID, actor *models.Actor) (*models.PlanningDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) List(ctx context.Context, projectID uuid.UUID, actor *models.Actor) ([]*models.PlanningDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.documents, nil
}

func (m *mockDocumentService) ListVersions(ctx context.Context, documentID uuid.UUID, actor *models.Actor) ([]*models.DocumentVersion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.versions, nil
}

func (m *mockDocumentService) ListApprovalHistory(ctx context.Context, documentID uuid.UUID, actor *models.Actor) ([]*models.ApprovalHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

// mockConversationService is a simple mock for unit tests.
type mockConversationService struct {
	messages       []*models.ChatMessage
	welcome        string
	loadErr        error
	sendMessageErr error
	clearErr       error
	lastKey        models.ConversationKey
	events         []models.ChatEvent
}

func (m *mockConversationService) Load(ctx context.Context, key models.ConversationKey) ([]*models.ChatMessage, string, error) {
	m.lastKey = key
	if m.loadErr != nil {
		return nil, "", m.loadErr
	}
	return m.messages, m.welcome, nil
}

func (m *mockConversationService) SendMessage(ctx context.Context, key models.ConversationKey, userText string, events chan<- models.ChatEvent) error {
	m.lastKey = key
	for _, e := range m.events {
		events <- e
	}
	if m.sendMessageErr != nil {
		return m.sendMessageErr
	}
	if m.events == nil {
		events <- models.NewTextEvent("Reply")
		events <- models.NewDoneEvent()
	}
	return nil
}

func (m *mockConversationService) Clear(ctx context.Context, key models.ConversationKey) error {
	m.lastKey = key
	return m.clearErr
}

// mockGenerationService is a simple mock for unit tests.
type mockGenerationService struct {
	document *models.PlanningDocument
	err      error
	lastKey  models.ConversationKey
}

func (m *mockGenerationService) Generate(ctx context.Context, key models.ConversationKey, actor *models.Actor) (*models.PlanningDocument, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

// mockConflictService is a simple mock for unit tests.
type mockConflictService struct {
	result        *models.ConflictAnalysisResult
	err           error
	lastStep      int
	lastExcludeID *uuid.UUID
}

func (m *mockConflictService) Analyze(ctx context.Context, projectID uuid.UUID, candidateTitle, candidateContent string, step int, excludeID *uuid.UUID) (*models.ConflictAnalysisResult, error) {
	m.lastStep = step
	m.lastExcludeID = excludeID
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
