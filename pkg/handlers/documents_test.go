package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

func newTestDocumentsHandler() (*DocumentsHandler, *mockDocumentService) {
	svc := &mockDocumentService{}
	return NewDocumentsHandler(svc, zap.NewNop()), svc
}

func sampleDocument(projectID uuid.UUID) *models.PlanningDocument {
	now := time.Now()
	return &models.PlanningDocument{
		ID:        uuid.New(),
		ProjectID: projectID,
		Step:      3,
		Title:     "Core Features",
		Content:   "Feature list",
		Status:    models.StatusPrivate,
		Version:   1,
		CreatorID: uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDocumentsHandler_Create_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	svc.document = sampleDocument(projectID)

	body, _ := json.Marshal(CreateDocumentRequest{Step: 3, Title: "Core Features", Content: "Feature list"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc models.PlanningDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if doc.Title != "Core Features" {
		t.Errorf("expected title 'Core Features', got %q", doc.Title)
	}
	if doc.Status != models.StatusPrivate {
		t.Errorf("expected status private, got %q", doc.Status)
	}
}

func TestDocumentsHandler_Create_InvalidProjectID(t *testing.T) {
	handler, _ := newTestDocumentsHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/projects/bad-id/documents", nil)
	req.SetPathValue("pid", "bad-id")
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "invalid_project_id" {
		t.Errorf("expected error 'invalid_project_id', got %v", resp["error"])
	}
}

func TestDocumentsHandler_Create_InvalidBody(t *testing.T) {
	handler, _ := newTestDocumentsHandler()
	projectID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents",
		bytes.NewReader([]byte("not json")))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestDocumentsHandler_Create_ValidationError(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	svc.err = fmt.Errorf("%w: title must not be empty", apperrors.ErrValidation)

	body, _ := json.Marshal(CreateDocumentRequest{Step: 3})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "validation_error" {
		t.Errorf("expected error 'validation_error', got %v", resp["error"])
	}
}

func TestDocumentsHandler_Create_MissingClaims(t *testing.T) {
	handler, _ := newTestDocumentsHandler()
	projectID := uuid.New()

	body, _ := json.Marshal(CreateDocumentRequest{Step: 3, Title: "T", Content: "C"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 without claims, got %d", rec.Code)
	}
}

func TestDocumentsHandler_List_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	svc.documents = []*models.PlanningDocument{sampleDocument(projectID), sampleDocument(projectID)}

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+projectID.String()+"/documents", nil)
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	docs, ok := resp["documents"].([]any)
	if !ok {
		t.Fatalf("expected documents to be an array, got %T", resp["documents"])
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %d", len(docs))
	}
}

func TestDocumentsHandler_Get_NotFound(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.err = fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+projectID.String()+"/documents/"+documentID.String(), nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "not_found" {
		t.Errorf("expected error 'not_found', got %v", resp["error"])
	}
}

func TestDocumentsHandler_Save_Forbidden(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.err = fmt.Errorf("%w: only the creator may edit a private document", apperrors.ErrForbidden)

	body, _ := json.Marshal(SaveDocumentRequest{Title: "T", Content: "C"})
	req := httptest.NewRequest(http.MethodPut, "/api/projects/"+projectID.String()+"/documents/"+documentID.String(), bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Save(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestDocumentsHandler_ChangeStatus_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	doc := sampleDocument(projectID)
	doc.Status = models.StatusPendingApproval
	svc.document = doc

	body, _ := json.Marshal(ChangeStatusRequest{TargetStatus: "pending_approval"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/status", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.ChangeStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastStatus != models.StatusPendingApproval {
		t.Errorf("expected target pending_approval forwarded, got %q", svc.lastStatus)
	}
}

func TestDocumentsHandler_ChangeStatus_UnknownStatus(t *testing.T) {
	handler, _ := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()

	body, _ := json.Marshal(ChangeStatusRequest{TargetStatus: "archived"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/status", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.ChangeStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "invalid_status" {
		t.Errorf("expected error 'invalid_status', got %v", resp["error"])
	}
}

func TestDocumentsHandler_ChangeStatus_InvalidTransition(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.err = fmt.Errorf("%w: private documents cannot become official directly", apperrors.ErrInvalidTransition)

	body, _ := json.Marshal(ChangeStatusRequest{TargetStatus: "official"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/status", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.ChangeStatus(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "invalid_transition" {
		t.Errorf("expected error 'invalid_transition', got %v", resp["error"])
	}
}

func TestDocumentsHandler_Restore_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.document = sampleDocument(projectID)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/versions/2/restore", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req.SetPathValue("version", "2")
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Restore(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastVersion != 2 {
		t.Errorf("expected version 2 forwarded, got %d", svc.lastVersion)
	}
}

func TestDocumentsHandler_Restore_InvalidVersion(t *testing.T) {
	handler, _ := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/versions/zero/restore", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req.SetPathValue("version", "zero")
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Restore(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "invalid_version" {
		t.Errorf("expected error 'invalid_version', got %v", resp["error"])
	}
}

func TestDocumentsHandler_Delete_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/"+projectID.String()+"/documents/"+documentID.String(), nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if !svc.deleteCalled {
		t.Error("expected delete to be called")
	}
}

func TestDocumentsHandler_Delete_OfficialConflict(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.deleteErr = fmt.Errorf("%w: official documents cannot be deleted", apperrors.ErrConflict)

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/"+projectID.String()+"/documents/"+documentID.String(), nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestDocumentsHandler_ListVersions_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.versions = []*models.DocumentVersion{
		{ID: uuid.New(), DocumentID: documentID, Version: 1, Title: "T", Content: "C"},
		{ID: uuid.New(), DocumentID: documentID, Version: 2, Title: "T", Content: "C2"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/versions", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.ListVersions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	versions, ok := resp["versions"].([]any)
	if !ok {
		t.Fatalf("expected versions to be an array, got %T", resp["versions"])
	}
	if len(versions) != 2 {
		t.Errorf("expected 2 versions, got %d", len(versions))
	}
}

func TestDocumentsHandler_ListApprovalHistory_Success(t *testing.T) {
	handler, svc := newTestDocumentsHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	svc.history = []*models.ApprovalHistoryEntry{
		{ID: uuid.New(), DocumentID: documentID, Action: models.ActionRequested},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+projectID.String()+"/documents/"+documentID.String()+"/history", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("did", documentID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.ListApprovalHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	history, ok := resp["history"].([]any)
	if !ok {
		t.Fatalf("expected history to be an array, got %T", resp["history"])
	}
	if len(history) != 1 {
		t.Errorf("expected 1 entry, got %d", len(history))
	}
}
