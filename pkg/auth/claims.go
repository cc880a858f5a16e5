// Package auth provides JWT-based authentication for planstack-engine.
// Tokens are issued by the external identity provider; the engine only
// verifies signatures and reads capability claims.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/planstack-io/planstack-engine/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims structure from the identity provider.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp) and
// adds custom claims for project membership.
type Claims struct {
	jwt.RegisteredClaims
	ProjectID string `json:"pid,omitempty"`   // Project UUID
	Role      string `json:"role,omitempty"`  // Project role of the user
	IsAdmin   bool   `json:"admin,omitempty"` // Project admin flag
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// Actor builds the permission-check view of the authenticated user.
func (c *Claims) Actor() (*models.Actor, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}
	return &models.Actor{
		UserID:  userID,
		Role:    c.Role,
		IsAdmin: c.IsAdmin,
	}, nil
}
