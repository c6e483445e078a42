package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-admin/internal/auth"
	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/domain"
	"github.com/spec-kit/marketplace-admin/internal/repository"
)

type memoryAdminRepo struct {
	mu       sync.Mutex
	nextID   int64
	admins   map[int64]*domain.Admin
	touchErr error
}

func newMemoryAdminRepo() *memoryAdminRepo {
	return &memoryAdminRepo{nextID: 1, admins: make(map[int64]*domain.Admin)}
}

func (r *memoryAdminRepo) Create(ctx context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin.ID = r.nextID
	r.nextID++
	clone := *admin
	r.admins[admin.ID] = &clone
	return nil
}

func (r *memoryAdminRepo) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *admin
	return &clone, nil
}

func (r *memoryAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, email) {
			clone := *admin
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAdminRepo) UpdateProfile(ctx context.Context, id int64, patch repository.AdminProfilePatch) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Email != nil {
		admin.Email = *patch.Email
	}
	if patch.FirstName != nil {
		admin.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		admin.LastName = *patch.LastName
	}
	clone := *admin
	return &clone, nil
}

func (r *memoryAdminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	admin.PasswordHash = passwordHash
	return nil
}

func (r *memoryAdminRepo) TouchLastLogin(ctx context.Context, id int64) error {
	return r.touchErr
}

func (r *memoryAdminRepo) SetRole(ctx context.Context, id int64, roleID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	admin.RoleID = roleID
	return nil
}

func (r *memoryAdminRepo) ListByRoleID(ctx context.Context, roleID int64) ([]domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Admin
	for _, admin := range r.admins {
		if admin.RoleID != nil && *admin.RoleID == roleID && admin.Active {
			out = append(out, *admin)
		}
	}
	return out, nil
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		BcryptCost:         bcrypt.MinCost,
	}}
}

func newTestAuthService(repo *memoryAdminRepo) *AdminAuthService {
	return NewAdminAuthService(testConfig(), AdminAuthDependencies{AdminRepo: repo})
}

func seedAdmin(t *testing.T, repo *memoryAdminRepo, email, password string, role domain.AdminRole, active bool) *domain.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	admin := &domain.Admin{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "Admin",
		Role:         role,
		Active:       active,
	}
	require.NoError(t, repo.Create(context.Background(), admin))
	return admin
}

func TestLoginSuccess(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	admin, pair, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", admin.Email)
	assert.NotNil(t, admin.LastLogin)

	claims, err := svc.TokenIssuer().VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, domain.AdminRoleEditor, claims.Role)

	_, err = svc.TokenIssuer().VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "Ops@Example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	_, _, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "correct horse")
	_, _, wrongPassErr := svc.Login(context.Background(), "ops@example.com", "wrong horse")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, false)
	svc := newTestAuthService(repo)

	// Correct credentials do not help a deactivated account.
	_, _, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestLoginSucceedsWhenLastLoginWriteFails(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	repo.touchErr = pgx.ErrTxClosed
	svc := newTestAuthService(repo)

	admin, _, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)
	assert.Nil(t, admin.LastLogin)
}

func TestRefreshRotatesPair(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	_, pair, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.TokenIssuer().VerifyAccess(rotated.AccessToken)
	assert.NoError(t, err)
	_, err = svc.TokenIssuer().VerifyRefresh(rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshNeverReissuesTheSamePair(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	_, pair, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)

	first, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	// Back-to-back rotations land in the same second; the strings must still
	// change every time.
	assert.NotEqual(t, pair.AccessToken, first.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, first.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := newMemoryAdminRepo()
	seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	_, pair, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := newTestAuthService(newMemoryAdminRepo())

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestRefreshReadsLiveAdminState(t *testing.T) {
	repo := newMemoryAdminRepo()
	admin := seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	_, pair, err := svc.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)

	// Deactivation after issuance must invalidate refresh immediately.
	repo.admins[admin.ID].Active = false
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrAdminNotFoundOrInactive)

	delete(repo.admins, admin.ID)
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrAdminNotFoundOrInactive)
}

func TestUpdateProfilePartialPatch(t *testing.T) {
	repo := newMemoryAdminRepo()
	admin := seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	first := "Grace"
	updated, err := svc.UpdateProfile(context.Background(), admin.ID, repository.AdminProfilePatch{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Admin", updated.LastName)
	assert.Equal(t, "ops@example.com", updated.Email)
	assert.Equal(t, domain.AdminRoleEditor, updated.Role)
	assert.Equal(t, admin.PasswordHash, updated.PasswordHash)
}

func TestUpdateProfileUnknownAdmin(t *testing.T) {
	svc := newTestAuthService(newMemoryAdminRepo())

	first := "Grace"
	_, err := svc.UpdateProfile(context.Background(), 99, repository.AdminProfilePatch{FirstName: &first})
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryAdminRepo()
	admin := seedAdmin(t, repo, "ops@example.com", "old password", domain.AdminRoleEditor, true)
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), admin.ID, "wrong password", "new password")
	assert.ErrorIs(t, err, ErrIncorrectCurrentPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), admin.ID, "old password", "new password"))

	_, _, err = svc.Login(context.Background(), "ops@example.com", "old password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "ops@example.com", "new password")
	assert.NoError(t, err)
}

func TestRoleChecksForUnknownAdmin(t *testing.T) {
	svc := newTestAuthService(newMemoryAdminRepo())
	ctx := context.Background()

	hasRole, err := svc.HasRole(ctx, 99, "editor")
	require.NoError(t, err)
	assert.False(t, hasRole)

	hasAny, err := svc.HasAnyRole(ctx, 99, []string{"editor", "super_admin"})
	require.NoError(t, err)
	assert.False(t, hasAny)

	level, err := svc.RoleLevel(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 0, level)

	hasPerm, err := svc.HasPermission(ctx, 99, "manage_themes")
	require.NoError(t, err)
	assert.False(t, hasPerm)
}

func TestRoleChecks(t *testing.T) {
	repo := newMemoryAdminRepo()
	admin := seedAdmin(t, repo, "ops@example.com", "correct horse", domain.AdminRoleContentManager, true)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	hasRole, err := svc.HasRole(ctx, admin.ID, "content_manager")
	require.NoError(t, err)
	assert.True(t, hasRole)

	hasAny, err := svc.HasAnyRole(ctx, admin.ID, []string{"super_admin", "content_manager"})
	require.NoError(t, err)
	assert.True(t, hasAny)

	level, err := svc.RoleLevel(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, level)

	allowed, err := svc.HasPermissionByResourceAction(ctx, admin.ID, "themes", "manage")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLogoutNeverFails(t *testing.T) {
	svc := newTestAuthService(newMemoryAdminRepo())

	svc.Logout(context.Background(), 99)
	svc.Logout(context.Background(), 0)
}
