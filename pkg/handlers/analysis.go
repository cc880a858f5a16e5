package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/auth"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/services"
)

// ConflictAnalysisRequest is the request body for conflict analysis.
type ConflictAnalysisRequest struct {
	CandidateTitle   string     `json:"candidate_title"`
	CandidateContent string     `json:"candidate_content"`
	Step             int        `json:"step"`
	DocumentID       *uuid.UUID `json:"document_id,omitempty"`
}

// AnalysisHandler handles document generation and conflict analysis.
type AnalysisHandler struct {
	generation services.GenerationService
	conflicts  services.ConflictService
	logger     *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(generation services.GenerationService, conflicts services.ConflictService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{generation: generation, conflicts: conflicts, logger: logger}
}

// RegisterRoutes registers the generation and analysis routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ProjectScopeMiddleware) {
	protect := func(fn http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireAuthWithPathValidation("pid")(scopeMiddleware(fn))
	}

	mux.HandleFunc("POST /api/projects/{pid}/steps/{step}/generate", protect(h.Generate))
	mux.HandleFunc("POST /api/projects/{pid}/analysis/conflicts", protect(h.AnalyzeConflicts))
}

// Generate handles POST /api/projects/{pid}/steps/{step}/generate
func (h *AnalysisHandler) Generate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	step, ok := ParseStep(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	key := models.ConversationKey{ProjectID: projectID, UserID: actor.UserID, Step: step}

	doc, err := h.generation.Generate(r.Context(), key, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to encode generated document response", zap.Error(err))
	}
}

// AnalyzeConflicts handles POST /api/projects/{pid}/analysis/conflicts
func (h *AnalysisHandler) AnalyzeConflicts(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	if _, err := auth.RequireActorFromContext(r.Context()); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	var req ConflictAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.conflicts.Analyze(r.Context(), projectID, req.CandidateTitle, req.CandidateContent, req.Step, req.DocumentID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode conflict analysis response", zap.Error(err))
	}
}
