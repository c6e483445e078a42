package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-admin/internal/api/dto"
	"github.com/spec-kit/marketplace-admin/internal/service"
)

// RolePermissionHandler exposes the role and permission administration
// endpoints plus admin provisioning.
type RolePermissionHandler struct {
	roleService *service.RolePermissionService
}

// NewRolePermissionHandler constructs the handler.
func NewRolePermissionHandler(roleService *service.RolePermissionService) *RolePermissionHandler {
	return &RolePermissionHandler{roleService: roleService}
}

// ListRoles handles GET /api/admin/roles.
func (h *RolePermissionHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.roleService.ListRoles(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		resp := dto.NewRoleResponse(&roles[i].Role)
		resp.Admins = make([]dto.RoleAdminResponse, 0, len(roles[i].Admins))
		for j := range roles[i].Admins {
			resp.Admins = append(resp.Admins, dto.RoleAdminResponse{
				Email:    roles[i].Admins[j].Email,
				FullName: roles[i].Admins[j].FullName(),
			})
		}
		out = append(out, resp)
	}
	return c.JSON(fiber.Map{"roles": out})
}

// GetRole handles GET /api/admin/roles/:id.
func (h *RolePermissionHandler) GetRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	role, err := h.roleService.GetRole(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"role": dto.NewRoleResponse(role)})
}

// CreateRole handles POST /api/admin/roles.
func (h *RolePermissionHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "role name required")
	}

	role, err := h.roleService.CreateRole(c.Context(), req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"role":    dto.NewRoleResponse(role),
		"message": "Role created successfully",
	})
}

// UpdateRole handles PUT /api/admin/roles/:id.
func (h *RolePermissionHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name != nil && *req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "role name cannot be empty")
	}

	role, err := h.roleService.UpdateRole(c.Context(), id, service.RoleUpdate{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"role":    dto.NewRoleResponse(role),
		"message": "Role updated successfully",
	})
}

// DeleteRole handles DELETE /api/admin/roles/:id.
func (h *RolePermissionHandler) DeleteRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.roleService.DeleteRole(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Role deleted successfully"})
}

// ListPermissions handles GET /api/admin/permissions.
func (h *RolePermissionHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.roleService.ListPermissions(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.PermissionResponse, 0, len(perms))
	for i := range perms {
		out = append(out, dto.NewPermissionResponse(&perms[i]))
	}
	return c.JSON(fiber.Map{"permissions": out})
}

// CreateAdmin handles POST /api/admin/admins.
func (h *RolePermissionHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}
	if len(req.Password) < 8 {
		return fiber.NewError(http.StatusBadRequest, "Password must be at least 8 characters long")
	}

	admin, err := h.roleService.CreateAdmin(c.Context(), service.CreateAdminInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"admin":   dto.NewAdminResponse(admin),
		"message": "Admin created successfully",
	})
}

// AssignRole handles PUT /api/admin/admins/:id/role.
func (h *RolePermissionHandler) AssignRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	admin, err := h.roleService.AssignAdminRole(c.Context(), id, req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"admin":   dto.NewAdminResponse(admin),
		"message": "Role assigned successfully",
	})
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid id parameter")
	}
	return id, nil
}
