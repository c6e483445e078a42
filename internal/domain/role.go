package domain

import "time"

// Permission names a single capability as a resource/action pair, e.g.
// resource "publications", action "approve".
type Permission struct {
	ID          int64
	Name        string
	Description string
	Resource    string
	Action      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Role is a named bundle of permissions in the graph-based authorization
// model. Its permission set is read-only during evaluation.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPermission reports whether the role grants the named permission.
func (r *Role) HasPermission(name string) bool {
	for i := range r.Permissions {
		if r.Permissions[i].Name == name {
			return true
		}
	}
	return false
}

// HasPermissionByResourceAction reports whether the role grants a permission
// for the given resource/action pair.
func (r *Role) HasPermissionByResourceAction(resource, action string) bool {
	for i := range r.Permissions {
		if r.Permissions[i].Resource == resource && r.Permissions[i].Action == action {
			return true
		}
	}
	return false
}
