package dto

import (
	"time"

	"github.com/spec-kit/marketplace-admin/internal/domain"
)

// AdminLoginRequest payload for admin login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminResponse is the public projection of an administrator. The password
// hash is structurally absent and can never leak through serialization.
type AdminResponse struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	RoleID    *int64     `json:"role_id,omitempty"`
	Active    bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewAdminResponse projects a domain admin.
func NewAdminResponse(admin *domain.Admin) AdminResponse {
	return AdminResponse{
		ID:        admin.ID,
		Email:     admin.Email,
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
		FullName:  admin.FullName(),
		Role:      string(admin.Role),
		RoleID:    admin.RoleID,
		Active:    admin.Active,
		LastLogin: admin.LastLogin,
		CreatedAt: admin.CreatedAt,
		UpdatedAt: admin.UpdatedAt,
	}
}

// UpdateProfileRequest payload for partial profile updates. Only these three
// fields are accepted; anything else in the body is dropped during decoding.
type UpdateProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// ChangePasswordRequest payload for authenticated password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CheckAnyRoleRequest payload for the any-role check endpoint.
type CheckAnyRoleRequest struct {
	Roles []string `json:"roles"`
}
