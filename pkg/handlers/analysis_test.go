package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

func newTestAnalysisHandler() (*AnalysisHandler, *mockGenerationService, *mockConflictService) {
	generation := &mockGenerationService{}
	conflicts := &mockConflictService{}
	return NewAnalysisHandler(generation, conflicts, zap.NewNop()), generation, conflicts
}

func TestAnalysisHandler_Generate_Success(t *testing.T) {
	handler, generation, _ := newTestAnalysisHandler()
	projectID := uuid.New()
	generation.document = sampleDocument(projectID)

	actor := plannerActor()
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/steps/3/generate", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("step", "3")
	req = withActor(req, actor)
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc models.PlanningDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if doc.Step != 3 {
		t.Errorf("expected step 3, got %d", doc.Step)
	}

	if generation.lastKey.ProjectID != projectID || generation.lastKey.UserID != actor.UserID || generation.lastKey.Step != 3 {
		t.Errorf("unexpected conversation key: %+v", generation.lastKey)
	}
}

func TestAnalysisHandler_Generate_InvalidStep(t *testing.T) {
	handler, _, _ := newTestAnalysisHandler()
	projectID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/steps/0/generate", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("step", "0")
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestAnalysisHandler_Generate_EmptyConversation(t *testing.T) {
	handler, generation, _ := newTestAnalysisHandler()
	projectID := uuid.New()
	generation.err = fmt.Errorf("%w: no conversation to generate from", apperrors.ErrValidation)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/steps/3/generate", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("step", "3")
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestAnalysisHandler_Generate_UpstreamFailure(t *testing.T) {
	handler, generation, _ := newTestAnalysisHandler()
	projectID := uuid.New()
	generation.err = fmt.Errorf("%w: completion call failed", apperrors.ErrGenerationFailed)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/steps/3/generate", nil)
	req.SetPathValue("pid", projectID.String())
	req.SetPathValue("step", "3")
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "generation_failed" {
		t.Errorf("expected error 'generation_failed', got %v", resp["error"])
	}
}

func TestAnalysisHandler_AnalyzeConflicts_Success(t *testing.T) {
	handler, _, conflicts := newTestAnalysisHandler()
	projectID := uuid.New()
	conflicts.result = models.NoConflicts("No official or pending documents to compare against.")

	body, _ := json.Marshal(ConflictAnalysisRequest{
		CandidateTitle:   "Launch Plan",
		CandidateContent: "Q3 rollout",
		Step:             7,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/analysis/conflicts", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.AnalyzeConflicts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.ConflictAnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.HasConflicts {
		t.Error("expected no conflicts")
	}
	if conflicts.lastStep != 7 {
		t.Errorf("expected step 7 forwarded, got %d", conflicts.lastStep)
	}
	if conflicts.lastExcludeID != nil {
		t.Errorf("expected nil exclude ID, got %v", conflicts.lastExcludeID)
	}
}

func TestAnalysisHandler_AnalyzeConflicts_ForwardsDocumentID(t *testing.T) {
	handler, _, conflicts := newTestAnalysisHandler()
	projectID := uuid.New()
	documentID := uuid.New()
	conflicts.result = models.NoConflicts("n/a")

	body, _ := json.Marshal(ConflictAnalysisRequest{
		CandidateTitle:   "Launch Plan",
		CandidateContent: "Q3 rollout",
		Step:             7,
		DocumentID:       &documentID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/analysis/conflicts", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.AnalyzeConflicts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if conflicts.lastExcludeID == nil || *conflicts.lastExcludeID != documentID {
		t.Errorf("expected document ID forwarded, got %v", conflicts.lastExcludeID)
	}
}

func TestAnalysisHandler_AnalyzeConflicts_InvalidBody(t *testing.T) {
	handler, _, _ := newTestAnalysisHandler()
	projectID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/analysis/conflicts",
		bytes.NewReader([]byte("not json")))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.AnalyzeConflicts(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestAnalysisHandler_AnalyzeConflicts_UpstreamFailure(t *testing.T) {
	handler, _, conflicts := newTestAnalysisHandler()
	projectID := uuid.New()
	conflicts.err = fmt.Errorf("%w: malformed analysis response", apperrors.ErrAnalysisFailed)

	body, _ := json.Marshal(ConflictAnalysisRequest{CandidateTitle: "T", CandidateContent: "C", Step: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/analysis/conflicts", bytes.NewReader(body))
	req.SetPathValue("pid", projectID.String())
	req = withActor(req, plannerActor())
	rec := httptest.NewRecorder()

	handler.AnalyzeConflicts(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] != "analysis_failed" {
		t.Errorf("expected error 'analysis_failed', got %v", resp["error"])
	}
}
