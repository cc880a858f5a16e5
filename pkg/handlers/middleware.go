package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/database"
)

// ProjectScopeMiddleware is a function that wraps a handler with a
// project-scoped database connection.
type ProjectScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// NewProjectScopeMiddleware creates middleware that binds a pooled
// connection to the project in the URL path and stores it in the request
// context. The connection is released when the handler returns.
func NewProjectScopeMiddleware(provider *database.ProjectScopeProvider, logger *zap.Logger) ProjectScopeMiddleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			projectID, err := uuid.Parse(r.PathValue("pid"))
			if err != nil {
				if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project ID format"); err != nil {
					logger.Error("Failed to write error response", zap.Error(err))
				}
				return
			}

			ctx, cleanup, err := provider.WithProjectScope(r.Context(), projectID)
			if err != nil {
				logger.Error("Failed to acquire project scope",
					zap.String("project_id", projectID.String()), zap.Error(err))
				if err := ErrorResponse(w, http.StatusServiceUnavailable, "database_unavailable", "Could not acquire database connection"); err != nil {
					logger.Error("Failed to write error response", zap.Error(err))
				}
				return
			}
			defer cleanup()

			next(w, r.WithContext(ctx))
		}
	}
}
