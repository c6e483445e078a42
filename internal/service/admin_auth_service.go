package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-admin/internal/auth"
	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/domain"
	"github.com/spec-kit/marketplace-admin/internal/events"
	"github.com/spec-kit/marketplace-admin/internal/observability"
	"github.com/spec-kit/marketplace-admin/internal/ratelimit"
	"github.com/spec-kit/marketplace-admin/internal/repository"
)

// AdminAuthService orchestrates the admin session lifecycle: login, token
// refresh, logout, profile and password mutation, and role/permission checks.
type AdminAuthService struct {
	admins     repository.AdminRepository
	tokens     *auth.TokenIssuer
	evaluator  *auth.Evaluator
	limiter    *ratelimit.LoginLimiter
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int
}

// AdminAuthDependencies encapsulates collaborator requirements for the
// service. Limiter, Dispatcher, Metrics and Logger are optional.
type AdminAuthDependencies struct {
	AdminRepo     repository.AdminRepository
	RoleDirectory auth.RoleDirectory
	Limiter       *ratelimit.LoginLimiter
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewAdminAuthService builds the service.
func NewAdminAuthService(cfg config.Config, deps AdminAuthDependencies) *AdminAuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAuthService{
		admins: deps.AdminRepo,
		tokens: auth.NewTokenIssuer(auth.TokenOptions{
			AccessSecret:  cfg.Auth.AccessTokenSecret,
			RefreshSecret: cfg.Auth.RefreshTokenSecret,
			AccessTTL:     cfg.Auth.AccessTokenTTL(),
			RefreshTTL:    cfg.Auth.RefreshTokenTTL(),
		}),
		evaluator:  auth.NewEvaluator(deps.RoleDirectory),
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates an admin by email and password and issues a token pair.
// Unknown email and wrong password both return ErrInvalidCredentials so the
// caller cannot enumerate accounts.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*domain.Admin, domain.TokenPair, error) {
	if !s.limiter.Allow(ctx, email) {
		return nil, domain.TokenPair{}, ErrTooManyLoginAttempts
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.TokenPair{}, s.failLogin(ctx, 0, email, "unknown_email")
		}
		return nil, domain.TokenPair{}, err
	}

	if !admin.Active {
		s.publish(ctx, events.NewEvent(events.EventAdminLoginFailed, admin.ID, email,
			events.LoginFailedPayload{Reason: "deactivated"}))
		s.metrics.RecordAuthEvent("login_failed")
		return nil, domain.TokenPair{}, ErrAccountDeactivated
	}

	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, domain.TokenPair{}, s.failLogin(ctx, admin.ID, email, "wrong_password")
	}

	// Best-effort: a failed last-login write must not reject valid credentials.
	if err := s.admins.TouchLastLogin(ctx, admin.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("admin_id", admin.ID), zap.Error(err))
	} else {
		now := time.Now()
		admin.LastLogin = &now
	}

	pair, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.limiter.Reset(ctx, email)
	s.publish(ctx, events.NewEvent(events.EventAdminLoggedIn, admin.ID, admin.Email, nil))
	s.metrics.RecordAuthEvent("login_success")
	return admin, pair, nil
}

// Refresh validates a refresh token and rotates the whole pair. The token is
// verified before the admin row is consulted, and the admin's live state is
// re-read rather than trusted from the claims, so a deactivated admin is
// rejected even while holding an unexpired refresh token.
func (s *AdminAuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidOrExpiredToken
	}

	admin, err := s.admins.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, ErrAdminNotFoundOrInactive
		}
		return domain.TokenPair{}, err
	}
	if !admin.Active {
		return domain.TokenPair{}, ErrAdminNotFoundOrInactive
	}

	pair, err := s.tokens.Issue(admin)
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.metrics.RecordAuthEvent("token_refreshed")
	return pair, nil
}

// Logout is an audit hook only. Tokens are stateless, so nothing is revoked
// server-side; the transport layer clears its cookie. Never fails, even for
// an unknown admin id.
func (s *AdminAuthService) Logout(ctx context.Context, adminID int64) {
	if adminID != 0 {
		s.publish(ctx, events.NewEvent(events.EventAdminLoggedOut, adminID, "", nil))
	}
	s.metrics.RecordAuthEvent("logout")
}

// GetProfile loads an admin by id.
func (s *AdminAuthService) GetProfile(ctx context.Context, adminID int64) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// UpdateProfile applies a partial profile update. The patch type admits only
// email and name fields; password hash and role mutations are rejected at
// this boundary and move through their dedicated operations instead.
func (s *AdminAuthService) UpdateProfile(ctx context.Context, adminID int64, patch repository.AdminProfilePatch) (*domain.Admin, error) {
	if _, err := s.GetProfile(ctx, adminID); err != nil {
		return nil, err
	}

	admin, err := s.admins.UpdateProfile(ctx, adminID, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventAdminProfileUpdated, admin.ID, admin.Email,
		events.ProfileUpdatedPayload{Fields: patchFields(patch)}))
	return admin, nil
}

// ChangePassword verifies the current password before storing a new hash.
// Previously issued tokens stay valid until expiry; there is no server-side
// revocation in this design.
func (s *AdminAuthService) ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) error {
	admin, err := s.GetProfile(ctx, adminID)
	if err != nil {
		return err
	}

	if err := auth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
		return ErrIncorrectCurrentPassword
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.admins.UpdatePassword(ctx, adminID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.NewEvent(events.EventAdminPasswordChange, admin.ID, admin.Email, nil))
	s.metrics.RecordAuthEvent("password_changed")
	return nil
}

// HasRole reports whether the admin's legacy role matches exactly. Unknown
// admins simply lack every role.
func (s *AdminAuthService) HasRole(ctx context.Context, adminID int64, role string) (bool, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return admin.HasRole(role), nil
}

// HasAnyRole reports whether the admin's legacy role is in the given set.
func (s *AdminAuthService) HasAnyRole(ctx context.Context, adminID int64, roles []string) (bool, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return admin.HasAnyRole(roles), nil
}

// RoleLevel returns the admin's legacy role hierarchy level, 0 for unknown
// admins.
func (s *AdminAuthService) RoleLevel(ctx context.Context, adminID int64) (int, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return admin.RoleLevel(), nil
}

// HasPermission answers a named permission check through the hybrid
// evaluator.
func (s *AdminAuthService) HasPermission(ctx context.Context, adminID int64, permission string) (bool, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return s.evaluator.HasPermission(ctx, admin, permission)
}

// HasPermissionByResourceAction answers a resource/action permission check
// through the hybrid evaluator.
func (s *AdminAuthService) HasPermissionByResourceAction(ctx context.Context, adminID int64, resource, action string) (bool, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return s.evaluator.HasPermissionByResourceAction(ctx, admin, resource, action)
}

// TokenIssuer exposes the underlying issuer for middleware usage.
func (s *AdminAuthService) TokenIssuer() *auth.TokenIssuer {
	return s.tokens
}

func (s *AdminAuthService) failLogin(ctx context.Context, adminID int64, email, reason string) error {
	s.limiter.RecordFailure(ctx, email)
	s.publish(ctx, events.NewEvent(events.EventAdminLoginFailed, adminID, email,
		events.LoginFailedPayload{Reason: reason}))
	s.metrics.RecordAuthEvent("login_failed")
	return ErrInvalidCredentials
}

func (s *AdminAuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func patchFields(patch repository.AdminProfilePatch) []string {
	var fields []string
	if patch.Email != nil {
		fields = append(fields, "email")
	}
	if patch.FirstName != nil {
		fields = append(fields, "first_name")
	}
	if patch.LastName != nil {
		fields = append(fields, "last_name")
	}
	return fields
}
