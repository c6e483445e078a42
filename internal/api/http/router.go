package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-admin/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-admin/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	AdminAuth      *handlers.AdminAuthHandler
	RolePermission *handlers.RolePermissionHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Level 1 (agency) is the entry bar for the
// admin panel; role administration reads need level 4 and writes level 5.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	adminAuth := app.Group("/api/admin/auth")
	adminAuth.Post("/login", cfg.AdminAuth.Login)
	adminAuth.Post("/refresh-token", cfg.AdminAuth.Refresh)

	session := adminAuth.Group("", cfg.AuthMiddleware.Handle, auth.RequireRoleLevel(1))
	session.Post("/logout", cfg.AdminAuth.Logout)
	session.Get("/profile", cfg.AdminAuth.GetProfile)
	session.Put("/profile", cfg.AdminAuth.UpdateProfile)
	session.Put("/change-password", cfg.AdminAuth.ChangePassword)
	session.Get("/check-role/:role", cfg.AdminAuth.CheckRole)
	session.Post("/check-any-role", cfg.AdminAuth.CheckAnyRole)
	session.Get("/role-level", cfg.AdminAuth.RoleLevel)
	session.Get("/check-permission/:name", cfg.AdminAuth.CheckPermission)
	session.Get("/check-access/:resource/:action", cfg.AdminAuth.CheckAccess)

	roles := app.Group("/api/admin/roles", cfg.AuthMiddleware.Handle)
	roles.Get("/", auth.RequirePermission("manage_admins"), cfg.RolePermission.ListRoles)
	roles.Get("/:id", auth.RequirePermission("manage_admins"), cfg.RolePermission.GetRole)
	roles.Post("/", auth.RequirePermission("system_admin"), cfg.RolePermission.CreateRole)
	roles.Put("/:id", auth.RequirePermission("system_admin"), cfg.RolePermission.UpdateRole)
	roles.Delete("/:id", auth.RequirePermission("system_admin"), cfg.RolePermission.DeleteRole)

	permissions := app.Group("/api/admin/permissions", cfg.AuthMiddleware.Handle)
	permissions.Get("/", auth.RequirePermission("manage_admins"), cfg.RolePermission.ListPermissions)

	admins := app.Group("/api/admin/admins", cfg.AuthMiddleware.Handle)
	admins.Post("/", auth.RequirePermission("manage_admins"), cfg.RolePermission.CreateAdmin)
	admins.Put("/:id/role", auth.RequirePermission("system_admin"), cfg.RolePermission.AssignRole)
}
