package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-admin/internal/domain"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(TokenOptions{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func testAdmin() *domain.Admin {
	return &domain.Admin{
		ID:    42,
		Email: "ops@example.com",
		Role:  domain.AdminRoleEditor,
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.Issue(testAdmin())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	accessClaims, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accessClaims.AdminID)
	assert.Equal(t, "ops@example.com", accessClaims.Email)
	assert.Equal(t, domain.AdminRoleEditor, accessClaims.Role)

	refreshClaims, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, accessClaims.AdminID, refreshClaims.AdminID)
}

func TestIssueMintsUniqueTokens(t *testing.T) {
	issuer := testIssuer()
	admin := testAdmin()

	first, err := issuer.Issue(admin)
	require.NoError(t, err)
	second, err := issuer.Issue(admin)
	require.NoError(t, err)

	// Same identity, same second: the jti still makes every token distinct.
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, first.RefreshToken)

	firstClaims, err := issuer.VerifyAccess(first.AccessToken)
	require.NoError(t, err)
	secondClaims, err := issuer.VerifyAccess(second.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.Issue(testAdmin())
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	pair, err := testIssuer().Issue(testAdmin())
	require.NoError(t, err)

	other := NewTokenIssuer(TokenOptions{
		AccessSecret:  "different-secret",
		RefreshSecret: "also-different",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	_, err = other.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongPrincipalType(t *testing.T) {
	s := signer{secret: []byte("access-secret"), ttl: time.Minute}
	token, err := s.sign(&AdminClaims{AdminID: 7, TokenType: "customer"})
	require.NoError(t, err)

	_, err = testIssuer().VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := signer{secret: []byte("access-secret"), ttl: -time.Minute}
	token, err := s.sign(&AdminClaims{AdminID: 7, TokenType: principalType})
	require.NoError(t, err)

	_, err = testIssuer().VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	claims := &AdminClaims{AdminID: 7, TokenType: principalType}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = testIssuer().VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := testIssuer().VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = testIssuer().VerifyRefresh("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
