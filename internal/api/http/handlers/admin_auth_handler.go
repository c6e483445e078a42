package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-admin/internal/api/dto"
	"github.com/spec-kit/marketplace-admin/internal/auth"
	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/repository"
	"github.com/spec-kit/marketplace-admin/internal/service"
)

// AdminAuthHandler exposes the admin session endpoints. The refresh token
// travels exclusively in an HTTP-only cookie; response bodies only ever carry
// the access token.
type AdminAuthHandler struct {
	authService *service.AdminAuthService
	refreshTTL  time.Duration
	production  bool
}

// NewAdminAuthHandler constructs the handler.
func NewAdminAuthHandler(authService *service.AdminAuthService, cfg *config.Config) *AdminAuthHandler {
	return &AdminAuthHandler{
		authService: authService,
		refreshTTL:  cfg.Auth.RefreshTokenTTL(),
		production:  cfg.App.Production(),
	}
}

// Login handles POST /api/admin/auth/login.
func (h *AdminAuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	admin, tokens, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	return c.JSON(fiber.Map{
		"admin":   dto.NewAdminResponse(admin),
		"tokens":  fiber.Map{"accessToken": tokens.AccessToken},
		"message": "Login successful",
	})
}

// Refresh handles POST /api/admin/auth/refresh-token.
func (h *AdminAuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(auth.RefreshCookieName)
	if refreshToken == "" {
		return fiber.NewError(http.StatusUnauthorized, "Refresh token required")
	}

	tokens, err := h.authService.Refresh(c.Context(), refreshToken)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	return c.JSON(fiber.Map{
		"accessToken": tokens.AccessToken,
		"message":     "Token refreshed successfully",
	})
}

// Logout handles POST /api/admin/auth/logout. It never fails: the cookie is
// cleared even when the session already expired.
func (h *AdminAuthHandler) Logout(c *fiber.Ctx) error {
	if claims, ok := auth.ClaimsFromContext(c); ok {
		h.authService.Logout(c.Context(), claims.AdminID)
	}

	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetProfile handles GET /api/admin/auth/profile.
func (h *AdminAuthHandler) GetProfile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	admin, err := h.authService.GetProfile(c.Context(), claims.AdminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"admin": dto.NewAdminResponse(admin)})
}

// UpdateProfile handles PUT /api/admin/auth/profile. The request type admits
// only profile fields; password hash and role values in the payload are
// discarded during decoding.
func (h *AdminAuthHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email != nil && *req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email cannot be empty")
	}
	if req.FirstName != nil && *req.FirstName == "" {
		return fiber.NewError(http.StatusBadRequest, "first name cannot be empty")
	}
	if req.LastName != nil && *req.LastName == "" {
		return fiber.NewError(http.StatusBadRequest, "last name cannot be empty")
	}

	admin, err := h.authService.UpdateProfile(c.Context(), claims.AdminID, repository.AdminProfilePatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"admin":   dto.NewAdminResponse(admin),
		"message": "Profile updated successfully",
	})
}

// ChangePassword handles PUT /api/admin/auth/change-password. The minimum
// length rule lives here at the validation boundary, not in the service.
func (h *AdminAuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "Current password is required")
	}
	if len(req.NewPassword) < 8 {
		return fiber.NewError(http.StatusBadRequest, "New password must be at least 8 characters long")
	}

	if err := h.authService.ChangePassword(c.Context(), claims.AdminID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// CheckRole handles GET /api/admin/auth/check-role/:role.
func (h *AdminAuthHandler) CheckRole(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	hasRole, err := h.authService.HasRole(c.Context(), claims.AdminID, c.Params("role"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"hasRole": hasRole})
}

// CheckAnyRole handles POST /api/admin/auth/check-any-role.
func (h *AdminAuthHandler) CheckAnyRole(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	var req dto.CheckAnyRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Roles == nil {
		return fiber.NewError(http.StatusBadRequest, "Roles must be an array")
	}

	hasAnyRole, err := h.authService.HasAnyRole(c.Context(), claims.AdminID, req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"hasAnyRole": hasAnyRole})
}

// RoleLevel handles GET /api/admin/auth/role-level.
func (h *AdminAuthHandler) RoleLevel(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	level, err := h.authService.RoleLevel(c.Context(), claims.AdminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"roleLevel": level})
}

// CheckPermission handles GET /api/admin/auth/check-permission/:name.
func (h *AdminAuthHandler) CheckPermission(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	hasPermission, err := h.authService.HasPermission(c.Context(), claims.AdminID, c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"hasPermission": hasPermission})
}

// CheckAccess handles GET /api/admin/auth/check-access/:resource/:action.
func (h *AdminAuthHandler) CheckAccess(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "admin authentication required")
	}

	hasPermission, err := h.authService.HasPermissionByResourceAction(
		c.Context(), claims.AdminID, c.Params("resource"), c.Params("action"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"hasPermission": hasPermission})
}

func (h *AdminAuthHandler) setRefreshCookie(c *fiber.Ctx, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(h.refreshTTL),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AdminAuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
