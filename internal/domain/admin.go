package domain

import (
	"strings"
	"time"
)

// AdminRole enumerates the legacy fixed role set. New deployments assign a
// graph Role instead; the legacy role stays populated as the fallback
// authorization source.
type AdminRole string

const (
	AdminRoleSuperAdmin     AdminRole = "super_admin"
	AdminRoleContentManager AdminRole = "content_manager"
	AdminRoleEditor         AdminRole = "editor"
	AdminRoleRegisteredUser AdminRole = "registered_user"
	AdminRoleAgency         AdminRole = "agency"
	AdminRoleOther          AdminRole = "other"
)

// roleLevels maps legacy roles to their hierarchy level. Route guards depend
// on these exact values.
var roleLevels = map[AdminRole]int{
	AdminRoleSuperAdmin:     5,
	AdminRoleContentManager: 4,
	AdminRoleEditor:         3,
	AdminRoleRegisteredUser: 2,
	AdminRoleAgency:         1,
	AdminRoleOther:          0,
}

// Level returns the hierarchy level for a legacy role, 0 for unknown roles.
func (r AdminRole) Level() int {
	return roleLevels[r]
}

// ParseAdminRole validates a legacy role name.
func ParseAdminRole(s string) (AdminRole, bool) {
	role := AdminRole(s)
	_, ok := roleLevels[role]
	return role, ok
}

// Admin models one administrative operator of the marketplace console.
type Admin struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         AdminRole
	RoleID       *int64
	Active       bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the admin's legacy role matches exactly.
func (a *Admin) HasRole(role string) bool {
	return string(a.Role) == role
}

// HasAnyRole reports whether the admin's legacy role is one of the given set.
func (a *Admin) HasAnyRole(roles []string) bool {
	for _, role := range roles {
		if string(a.Role) == role {
			return true
		}
	}
	return false
}

// RoleLevel returns the admin's legacy role hierarchy level.
func (a *Admin) RoleLevel() int {
	return a.Role.Level()
}

// FullName joins first and last name, tolerating missing parts.
func (a *Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
