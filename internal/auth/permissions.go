package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-admin/internal/domain"
)

// RoleDirectory loads graph roles with their permission sets expanded.
type RoleDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
}

// Evaluator answers permission questions against the hybrid authorization
// model: the graph role takes precedence when assigned, the legacy role enum
// is the fallback. The precedence rule lives here and nowhere else.
type Evaluator struct {
	roles RoleDirectory
}

// NewEvaluator builds an evaluator. A nil directory disables the graph path
// entirely, leaving only legacy fallbacks.
func NewEvaluator(roles RoleDirectory) *Evaluator {
	return &Evaluator{roles: roles}
}

// HasPermission checks a named permission against the admin's graph role.
// Without a graph role (or with a dangling role reference) it degrades to
// comparing the admin's own legacy role name against the permission name, a
// compatibility shim kept from the pre-graph model.
func (e *Evaluator) HasPermission(ctx context.Context, admin *domain.Admin, permission string) (bool, error) {
	role, err := e.loadRole(ctx, admin)
	if err != nil {
		return false, err
	}
	if role != nil {
		return role.HasPermission(permission), nil
	}
	return admin.HasRole(string(admin.Role)), nil
}

// HasPermissionByResourceAction checks a resource/action permission against
// the admin's graph role, falling back to the editor-and-above level cutoff
// for admins still on the legacy model.
func (e *Evaluator) HasPermissionByResourceAction(ctx context.Context, admin *domain.Admin, resource, action string) (bool, error) {
	role, err := e.loadRole(ctx, admin)
	if err != nil {
		return false, err
	}
	if role != nil {
		return role.HasPermissionByResourceAction(resource, action), nil
	}
	return admin.RoleLevel() >= domain.AdminRoleEditor.Level(), nil
}

// loadRole resolves the admin's graph role. A missing role row is treated the
// same as no assignment; store faults propagate.
func (e *Evaluator) loadRole(ctx context.Context, admin *domain.Admin) (*domain.Role, error) {
	if admin.RoleID == nil || e.roles == nil {
		return nil, nil
	}
	role, err := e.roles.GetByID(ctx, *admin.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}
