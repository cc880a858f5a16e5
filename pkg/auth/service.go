package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/config"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// AuthService validates bearer tokens on incoming requests.
type AuthService interface {
	ValidateRequest(r *http.Request) (*Claims, string, error)
	RequireProjectID(claims *Claims) error
	ValidateProjectIDMatch(claims *Claims, urlProjectID string) error
}

type authService struct {
	signingKey []byte
	verify     bool
	logger     *zap.Logger
}

// NewAuthService creates an AuthService from the auth configuration.
func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) AuthService {
	if !cfg.EnableVerification {
		logger.Warn("JWT signature verification is DISABLED - local development only")
	}
	return &authService{
		signingKey: []byte(cfg.SigningKey),
		verify:     cfg.EnableVerification,
		logger:     logger,
	}
}

var _ AuthService = (*authService)(nil)

// ValidateRequest extracts and validates the bearer token from the
// Authorization header.
func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "", fmt.Errorf("missing Authorization header")
	}

	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, "", fmt.Errorf("Authorization header is not a bearer token")
	}

	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return nil, "", err
	}
	return claims, tokenStr, nil
}

func (s *authService) parseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	if !s.verify {
		_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
		if err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
		return claims, s.validateClaims(claims)
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, s.validateClaims(claims)
}

func (s *authService) validateClaims(claims *Claims) error {
	if claims.Subject == "" {
		return fmt.Errorf("missing sub claim")
	}
	if claims.Role != "" && !models.IsValidRole(claims.Role) {
		return fmt.Errorf("unknown role %q in token", claims.Role)
	}
	return nil
}

// RequireProjectID checks that the token carries a project ID claim.
func (s *authService) RequireProjectID(claims *Claims) error {
	if claims.ProjectID == "" {
		return fmt.Errorf("missing project ID in token")
	}
	return nil
}

// ValidateProjectIDMatch checks that the URL project ID matches the
// token's project claim. A token scoped to one project must not reach
// another project's documents.
func (s *authService) ValidateProjectIDMatch(claims *Claims, urlProjectID string) error {
	if claims.ProjectID != urlProjectID {
		return fmt.Errorf("project ID mismatch: token=%s url=%s", claims.ProjectID, urlProjectID)
	}
	return nil
}
