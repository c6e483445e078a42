package dto

import (
	"github.com/spec-kit/marketplace-admin/internal/domain"
)

// CreateRoleRequest payload for new graph roles.
type CreateRoleRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	PermissionIDs []int64 `json:"permission_ids"`
}

// UpdateRoleRequest payload for partial role updates.
type UpdateRoleRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PermissionIDs *[]int64 `json:"permission_ids"`
}

// PermissionResponse projects a permission.
type PermissionResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
}

// RoleAdminResponse lists an admin holding a role.
type RoleAdminResponse struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// RoleResponse projects a role with its permission set.
type RoleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions"`
	Admins      []RoleAdminResponse  `json:"admins,omitempty"`
}

// AssignRoleRequest payload for admin role assignment; a null role_id clears
// the graph role.
type AssignRoleRequest struct {
	RoleID *int64 `json:"role_id"`
}

// CreateAdminRequest payload for provisioning a new administrator.
type CreateAdminRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	RoleID    *int64 `json:"role_id"`
}

// NewPermissionResponse projects a domain permission.
func NewPermissionResponse(p *domain.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Resource:    p.Resource,
		Action:      p.Action,
	}
}

// NewRoleResponse projects a domain role.
func NewRoleResponse(role *domain.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(role.Permissions))
	for i := range role.Permissions {
		perms = append(perms, NewPermissionResponse(&role.Permissions[i]))
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: perms,
	}
}
