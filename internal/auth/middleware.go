package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/marketplace-admin/pkg/util/errorutil"
)

const claimsKey = "admin_claims"

// RefreshCookieName is the HTTP-only cookie carrying the admin refresh token.
const RefreshCookieName = "adminRefreshToken"

// Middleware validates bearer access tokens on protected admin routes.
type Middleware struct {
	tokens *TokenIssuer
}

// NewMiddleware constructs the access-token middleware.
func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle verifies the Authorization header and stores the token claims on the
// request context. The claims identify the admin; live state is re-read from
// the store only where correctness requires it (token refresh).
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("admin access token required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.VerifyAccess(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired admin token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated admin claims.
func ClaimsFromContext(c *fiber.Ctx) (*AdminClaims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*AdminClaims)
	return claims, ok
}
