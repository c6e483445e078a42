package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-admin/internal/auth"
	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/domain"
	"github.com/spec-kit/marketplace-admin/internal/events"
	"github.com/spec-kit/marketplace-admin/internal/repository"
)

// RoleWithAdmins pairs a graph role with the active admins currently holding
// it, for the administration console listing.
type RoleWithAdmins struct {
	Role   domain.Role
	Admins []domain.Admin
}

// RoleUpdate carries a partial role mutation. A nil PermissionIDs leaves the
// permission set untouched.
type RoleUpdate struct {
	Name          *string
	Description   *string
	PermissionIDs *[]int64
}

// CreateAdminInput describes a provisioning request for a new administrator.
type CreateAdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	RoleID    *int64
}

// RolePermissionService manages the graph-RBAC entities and the privileged
// admin mutations (provisioning, role assignment) that the self-service
// profile path refuses.
type RolePermissionService struct {
	roles      repository.RoleRepository
	admins     repository.AdminRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// RolePermissionDependencies encapsulates repo requirements for the service.
type RolePermissionDependencies struct {
	RoleRepo   repository.RoleRepository
	AdminRepo  repository.AdminRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewRolePermissionService builds the service.
func NewRolePermissionService(cfg config.Config, deps RolePermissionDependencies) *RolePermissionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolePermissionService{
		roles:      deps.RoleRepo,
		admins:     deps.AdminRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// ListRoles returns every role with its permissions and current holders.
func (s *RolePermissionService) ListRoles(ctx context.Context) ([]RoleWithAdmins, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]RoleWithAdmins, 0, len(roles))
	for i := range roles {
		admins, err := s.admins.ListByRoleID(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		result = append(result, RoleWithAdmins{Role: roles[i], Admins: admins})
	}
	return result, nil
}

// GetRole loads one role with permissions expanded.
func (s *RolePermissionService) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

// CreateRole creates a role and assigns the given permissions.
func (s *RolePermissionService) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (*domain.Role, error) {
	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, ErrRoleNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	role := &domain.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, role, permissionIDs); err != nil {
		return nil, err
	}
	return role, nil
}

// UpdateRole applies a partial role update.
func (s *RolePermissionService) UpdateRole(ctx context.Context, id int64, update RoleUpdate) (*domain.Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil && *update.Name != role.Name {
		if _, err := s.roles.GetByName(ctx, *update.Name); err == nil {
			return nil, ErrRoleNameTaken
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		role.Name = *update.Name
	}
	if update.Description != nil {
		role.Description = *update.Description
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	if update.PermissionIDs != nil {
		if err := s.roles.SetPermissions(ctx, role.ID, *update.PermissionIDs); err != nil {
			return nil, err
		}
	}
	return s.GetRole(ctx, id)
}

// DeleteRole removes a role; holders fall back to their legacy role.
func (s *RolePermissionService) DeleteRole(ctx context.Context, id int64) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		return err
	}
	return nil
}

// ListPermissions returns the full permission catalog.
func (s *RolePermissionService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.roles.ListPermissions(ctx)
}

// AssignAdminRole sets or clears an admin's graph role. This is the only
// sanctioned path for role mutation.
func (s *RolePermissionService) AssignAdminRole(ctx context.Context, adminID int64, roleID *int64) (*domain.Admin, error) {
	if roleID != nil {
		if _, err := s.GetRole(ctx, *roleID); err != nil {
			return nil, err
		}
	}

	if err := s.admins.SetRole(ctx, adminID, roleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventAdminRoleAssigned, admin.ID, admin.Email,
			events.RoleAssignedPayload{RoleID: roleID}))
	}
	return admin, nil
}

// CreateAdmin provisions a new administrator account.
func (s *RolePermissionService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*domain.Admin, error) {
	if _, err := s.admins.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	legacyRole := domain.AdminRoleOther
	if input.Role != "" {
		parsed, ok := domain.ParseAdminRole(input.Role)
		if !ok {
			return nil, ErrInvalidLegacyRole
		}
		legacyRole = parsed
	}
	if input.RoleID != nil {
		if _, err := s.GetRole(ctx, *input.RoleID); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	admin := &domain.Admin{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         legacyRole,
		RoleID:       input.RoleID,
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("admin provisioned", zap.Int64("admin_id", admin.ID), zap.String("role", string(admin.Role)))
	return admin, nil
}
