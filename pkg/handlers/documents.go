package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/auth"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/services"
)

// CreateDocumentRequest is the request body for document creation.
type CreateDocumentRequest struct {
	Step    int    `json:"step"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SaveDocumentRequest is the request body for saving a document.
type SaveDocumentRequest struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	ChangeSummary *string `json:"change_summary,omitempty"`
}

// ChangeStatusRequest is the request body for a status transition.
type ChangeStatusRequest struct {
	TargetStatus string `json:"target_status"`
}

// DocumentsHandler handles planning document lifecycle endpoints.
type DocumentsHandler struct {
	documents services.DocumentService
	logger    *zap.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(documents services.DocumentService, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{documents: documents, logger: logger}
}

// RegisterRoutes registers the document routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ProjectScopeMiddleware) {
	protect := func(fn http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireAuthWithPathValidation("pid")(scopeMiddleware(fn))
	}

	mux.HandleFunc("POST /api/projects/{pid}/documents", protect(h.Create))
	mux.HandleFunc("GET /api/projects/{pid}/documents", protect(h.List))
	mux.HandleFunc("GET /api/projects/{pid}/documents/{did}", protect(h.Get))
	mux.HandleFunc("PUT /api/projects/{pid}/documents/{did}", protect(h.Save))
	mux.HandleFunc("DELETE /api/projects/{pid}/documents/{did}", protect(h.Delete))
	mux.HandleFunc("POST /api/projects/{pid}/documents/{did}/status", protect(h.ChangeStatus))
	mux.HandleFunc("GET /api/projects/{pid}/documents/{did}/versions", protect(h.ListVersions))
	mux.HandleFunc("POST /api/projects/{pid}/documents/{did}/versions/{version}/restore", protect(h.Restore))
	mux.HandleFunc("GET /api/projects/{pid}/documents/{did}/history", protect(h.ListApprovalHistory))
}

// Create handles POST /api/projects/{pid}/documents
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	doc, err := h.documents.Create(r.Context(), projectID, req.Step, req.Title, req.Content, actor.UserID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}

// List handles GET /api/projects/{pid}/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	docs, err := h.documents.List(r.Context(), projectID, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"documents": docs}); err != nil {
		h.logger.Error("Failed to encode documents response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{pid}/documents/{did}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	doc, err := h.documents.Get(r.Context(), documentID, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}

// Save handles PUT /api/projects/{pid}/documents/{did}
func (h *DocumentsHandler) Save(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	var req SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	doc, err := h.documents.Save(r.Context(), documentID, req.Title, req.Content, actor, req.ChangeSummary)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}

// ChangeStatus handles POST /api/projects/{pid}/documents/{did}/status
func (h *DocumentsHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	target := models.DocumentStatus(req.TargetStatus)
	if !models.IsValidStatus(target) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_status", "Unknown target status"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	doc, err := h.documents.ChangeStatus(r.Context(), documentID, target, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}

// Restore handles POST /api/projects/{pid}/documents/{did}/versions/{version}/restore
func (h *DocumentsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}
	version, ok := ParseVersionNumber(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	doc, err := h.documents.Restore(r.Context(), documentID, version, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{pid}/documents/{did}
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := h.documents.Delete(r.Context(), documentID, actor); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVersions handles GET /api/projects/{pid}/documents/{did}/versions
func (h *DocumentsHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	versions, err := h.documents.ListVersions(r.Context(), documentID, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"versions": versions}); err != nil {
		h.logger.Error("Failed to encode versions response", zap.Error(err))
	}
}

// ListApprovalHistory handles GET /api/projects/{pid}/documents/{did}/history
func (h *DocumentsHandler) ListApprovalHistory(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	actor, err := auth.RequireActorFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	entries, err := h.documents.ListApprovalHistory(r.Context(), documentID, actor)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"history": entries}); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}
