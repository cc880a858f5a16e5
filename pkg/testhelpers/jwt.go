package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/planstack-io/planstack-engine/pkg/auth"
)

// TestSigningKey is the HMAC key used for signing test tokens. Configure
// the auth service under test with the same key.
const TestSigningKey = "planstack-test-signing-key"

// GenerateTestJWT creates a signed test token for the given user,
// project and role. IsAdmin grants the matrix bypass.
func GenerateTestJWT(t *testing.T, userID, projectID uuid.UUID, role string, isAdmin bool) string {
	t.Helper()

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		ProjectID: projectID.String(),
		Role:      role,
		IsAdmin:   isAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(TestSigningKey))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// GenerateTestJWTWithBearer returns the token with a "Bearer " prefix for
// the Authorization header.
func GenerateTestJWTWithBearer(t *testing.T, userID, projectID uuid.UUID, role string, isAdmin bool) string {
	return "Bearer " + GenerateTestJWT(t, userID, projectID, role, isAdmin)
}
