package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/marketplace-admin/pkg/util/errorutil"
)

// permissionLevels maps coarse named permissions to the minimum legacy role
// level that grants them. Used by route guards for admins still on the legacy
// model; fine-grained checks go through the Evaluator.
var permissionLevels = map[string]int{
	"manage_publications":  1,
	"manage_themes":        1,
	"manage_reporters":     1,
	"manage_careers":       1,
	"manage_podcasters":    1,
	"manage_orders":        1,
	"approve_publications": 2,
	"approve_themes":       2,
	"approve_reporters":    2,
	"approve_careers":      2,
	"approve_podcasters":   2,
	"manage_users":         3,
	"manage_admins":        4,
	"system_admin":         5,
}

// RequireRoleLevel ensures the authenticated admin's legacy role level meets
// the minimum. Level 1 (agency) is the admin panel entry bar.
func RequireRoleLevel(minLevel int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("admin authentication required")
		}
		if claims.Role.Level() < minLevel {
			return apperrors.NewForbidden("insufficient admin role level")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the admin's legacy role is one of the allowed set.
func RequireAnyRole(allowed ...string) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("admin authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[string(claims.Role)]; !exists {
			return apperrors.NewForbidden("insufficient admin permissions")
		}
		return c.Next()
	}
}

// RequirePermission gates a route on a named coarse permission. Unknown
// permissions require the highest level.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("admin authentication required")
		}
		requiredLevel, known := permissionLevels[permission]
		if !known {
			requiredLevel = 5
		}
		if claims.Role.Level() < requiredLevel {
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}
