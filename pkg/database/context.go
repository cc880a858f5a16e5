package database

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// ProjectScopeKey is the context key for storing the project-scoped
	// database connection.
	ProjectScopeKey contextKey = "projectScope"
)

// GetProjectScope retrieves the project-scoped database connection from
// context. Returns nil and false if not present.
func GetProjectScope(ctx context.Context) (*ProjectScope, bool) {
	scope, ok := ctx.Value(ProjectScopeKey).(*ProjectScope)
	return scope, ok
}

// SetProjectScope stores the project-scoped database connection in
// context.
func SetProjectScope(ctx context.Context, scope *ProjectScope) context.Context {
	return context.WithValue(ctx, ProjectScopeKey, scope)
}

// ProjectScopeProvider creates project-scoped contexts for database
// operations.
type ProjectScopeProvider struct {
	db *DB
}

// NewProjectScopeProvider creates a ProjectScopeProvider for the given
// database.
func NewProjectScopeProvider(db *DB) *ProjectScopeProvider {
	return &ProjectScopeProvider{db: db}
}

// WithProjectScope returns a context with project scope set. The cleanup
// function must be called when the scope is no longer needed.
func (p *ProjectScopeProvider) WithProjectScope(ctx context.Context, projectID uuid.UUID) (context.Context, func(), error) {
	scope, err := p.db.WithProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	scopedCtx := SetProjectScope(ctx, scope)
	return scopedCtx, func() { scope.Close() }, nil
}
