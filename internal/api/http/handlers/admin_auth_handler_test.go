package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/marketplace-admin/internal/api/http"
	"github.com/spec-kit/marketplace-admin/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-admin/internal/auth"
	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/domain"
	"github.com/spec-kit/marketplace-admin/internal/persistence"
	"github.com/spec-kit/marketplace-admin/internal/repository"
	"github.com/spec-kit/marketplace-admin/internal/service"
)

type singleAdminRepo struct {
	admin *domain.Admin
}

func (r *singleAdminRepo) Create(ctx context.Context, admin *domain.Admin) error { return nil }

func (r *singleAdminRepo) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	if r.admin == nil || r.admin.ID != id {
		return nil, pgx.ErrNoRows
	}
	clone := *r.admin
	return &clone, nil
}

func (r *singleAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	if r.admin == nil || !strings.EqualFold(r.admin.Email, email) {
		return nil, pgx.ErrNoRows
	}
	clone := *r.admin
	return &clone, nil
}

func (r *singleAdminRepo) UpdateProfile(ctx context.Context, id int64, patch repository.AdminProfilePatch) (*domain.Admin, error) {
	return r.GetByID(ctx, id)
}

func (r *singleAdminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}

func (r *singleAdminRepo) TouchLastLogin(ctx context.Context, id int64) error { return nil }

func (r *singleAdminRepo) SetRole(ctx context.Context, id int64, roleID *int64) error { return nil }

func (r *singleAdminRepo) ListByRoleID(ctx context.Context, roleID int64) ([]domain.Admin, error) {
	return nil, nil
}

func newTestApp(t *testing.T) (*fiber.App, *service.AdminAuthService) {
	t.Helper()

	hash, err := auth.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	repo := &singleAdminRepo{admin: &domain.Admin{
		ID:           1,
		Email:        "ops@example.com",
		PasswordHash: hash,
		FirstName:    "Ops",
		LastName:     "Admin",
		Role:         domain.AdminRoleEditor,
		Active:       true,
	}}

	cfg := &config.Config{
		App: config.AppConfig{Env: "development"},
		Auth: config.AuthConfig{
			AccessTokenSecret:  "test-access-secret",
			RefreshTokenSecret: "test-refresh-secret",
			BcryptCost:         bcrypt.MinCost,
		},
	}
	svc := service.NewAdminAuthService(*cfg, service.AdminAuthDependencies{AdminRepo: repo})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		AdminAuth:      handlers.NewAdminAuthHandler(svc, cfg),
		RolePermission: handlers.NewRolePermissionHandler(nil),
		AuthMiddleware: auth.NewMiddleware(svc.TokenIssuer()),
	})
	return app, svc
}

func postJSON(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func refreshCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.RefreshCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", auth.RefreshCookieName)
	return nil
}

func TestLoginPutsRefreshTokenInCookieOnly(t *testing.T) {
	app, svc := newTestApp(t)

	req := postJSON(t, "/api/admin/auth/login", fiber.Map{
		"email":    "ops@example.com",
		"password": "correct horse",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Admin struct {
			Email string `json:"email"`
		} `json:"admin"`
		Tokens map[string]string `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "ops@example.com", body.Admin.Email)
	assert.NotEmpty(t, body.Tokens["accessToken"])
	assert.NotContains(t, body.Tokens, "refreshToken")

	cookie := refreshCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.False(t, cookie.Secure)
	require.NotEmpty(t, cookie.Value)
	assert.NotContains(t, string(raw), cookie.Value)

	claims, err := svc.TokenIssuer().VerifyRefresh(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.AdminID)

	// The password hash never appears in the projection.
	assert.NotContains(t, string(raw), "password_hash")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)

	req := postJSON(t, "/api/admin/auth/login", fiber.Map{
		"email":    "ops@example.com",
		"password": "wrong horse",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
}

func TestRefreshRequiresCookie(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/refresh-token", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRotatesCookie(t *testing.T) {
	app, svc := newTestApp(t)

	loginResp, err := app.Test(postJSON(t, "/api/admin/auth/login", fiber.Map{
		"email":    "ops@example.com",
		"password": "correct horse",
	}))
	require.NoError(t, err)
	oldCookie := refreshCookie(t, loginResp)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: oldCookie.Value})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)

	_, err = svc.TokenIssuer().VerifyAccess(body.AccessToken)
	assert.NoError(t, err)

	newCookie := refreshCookie(t, resp)
	_, err = svc.TokenIssuer().VerifyRefresh(newCookie.Value)
	assert.NoError(t, err)
}

func TestRefreshRejectsInvalidCookie(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: "tampered"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	app, svc := newTestApp(t)

	pair, err := svc.TokenIssuer().Issue(&domain.Admin{ID: 1, Email: "ops@example.com", Role: domain.AdminRoleEditor})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := refreshCookie(t, resp)
	assert.Empty(t, cookie.Value)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth/profile", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleAdministrationRequiresLevel(t *testing.T) {
	app, svc := newTestApp(t)

	// An editor (level 3) is below the manage_admins bar.
	pair, err := svc.TokenIssuer().Issue(&domain.Admin{ID: 1, Email: "ops@example.com", Role: domain.AdminRoleEditor})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/roles/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
