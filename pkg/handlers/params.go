package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/models"
)

// ParseProjectID extracts and validates the project ID from the request
// path. Returns the parsed UUID and true on success, or uuid.Nil and
// false on error (after writing an error response).
// Expects path parameter: pid
func ParseProjectID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "pid", "invalid_project_id", "Invalid project ID format", logger)
}

// ParseDocumentID extracts and validates the document ID from the
// request path.
// Expects path parameter: did
func ParseDocumentID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "did", "invalid_document_id", "Invalid document ID format", logger)
}

// ParseStep extracts and validates the workflow step from the request
// path. The step must be within the nine-step workflow range.
// Expects path parameter: step
func ParseStep(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil || !models.IsValidWorkflowStep(step) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_step", "Step must be an integer between 1 and 9"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return step, true
}

// ParseVersionNumber extracts and validates a version number from the
// request path.
// Expects path parameter: version
func ParseVersionNumber(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_version", "Version must be a positive integer"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return version, true
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
