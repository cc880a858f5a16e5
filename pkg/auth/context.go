package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/planstack-io/planstack-engine/pkg/models"
)

// GetProjectIDFromContext extracts the project ID from JWT claims in the
// context. Returns uuid.Nil if not authenticated or the claim is missing.
func GetProjectIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil || claims.ProjectID == "" {
		return uuid.Nil
	}

	projectID, err := uuid.Parse(claims.ProjectID)
	if err != nil {
		return uuid.Nil
	}
	return projectID
}

// RequireProjectIDFromContext extracts the project ID from context and
// returns an error if not found.
func RequireProjectIDFromContext(ctx context.Context) (uuid.UUID, error) {
	projectID := GetProjectIDFromContext(ctx)
	if projectID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("project ID not found in context")
	}
	return projectID, nil
}

// RequireUserIDFromContext extracts the user ID from context as a UUID
// and returns an error if not found or invalid.
func RequireUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in context: %w", err)
	}
	return userID, nil
}

// RequireActorFromContext builds the permission-check view of the
// authenticated user from claims in context.
func RequireActorFromContext(ctx context.Context) (*models.Actor, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return nil, fmt.Errorf("authentication required: no claims in context")
	}
	return claims.Actor()
}
