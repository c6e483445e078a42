package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-admin/internal/domain"
)

// principalType is asserted on every token to block cross-principal replay,
// e.g. an end-customer token presented to the admin console.
const principalType = "admin"

// ErrInvalidToken is returned for every verification failure: bad signature,
// expiry, malformed token, or wrong principal type. Callers never learn which
// check rejected the token.
var ErrInvalidToken = errors.New("invalid or expired token")

// AdminClaims describes the JWT payload shared by access and refresh tokens.
type AdminClaims struct {
	AdminID   int64            `json:"adminId"`
	Email     string           `json:"email"`
	Role      domain.AdminRole `json:"role"`
	TokenType string           `json:"type"`
	jwt.RegisteredClaims
}

// signer binds one secret to one lifetime. Access and refresh tokens get
// independent signer instances rather than a shared one with a mode flag,
// keeping the two trust domains structurally separate.
type signer struct {
	secret []byte
	ttl    time.Duration
}

func (s signer) sign(claims *AdminClaims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s signer) verify(tokenStr string) (*AdminClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid || claims.TokenType != principalType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenOptions configures the issuer explicitly so tests can run with fixed
// secrets and lifetimes.
type TokenOptions struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer mints and validates the admin access/refresh token pair.
type TokenIssuer struct {
	access  signer
	refresh signer
}

// NewTokenIssuer builds an issuer from explicit options, defaulting lifetimes
// to 15 minutes (access) and 7 days (refresh).
func NewTokenIssuer(opts TokenOptions) *TokenIssuer {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 168 * time.Hour
	}
	return &TokenIssuer{
		access:  signer{secret: []byte(opts.AccessSecret), ttl: opts.AccessTTL},
		refresh: signer{secret: []byte(opts.RefreshSecret), ttl: opts.RefreshTTL},
	}
}

// Issue signs a fresh token pair for the admin. The two tokens carry the same
// identity claims but are signed with distinct secrets and expiries.
func (ti *TokenIssuer) Issue(admin *domain.Admin) (domain.TokenPair, error) {
	accessToken, err := ti.access.sign(ti.claimsFor(admin))
	if err != nil {
		return domain.TokenPair{}, err
	}
	refreshToken, err := ti.refresh.sign(ti.claimsFor(admin))
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (ti *TokenIssuer) VerifyAccess(token string) (*AdminClaims, error) {
	return ti.access.verify(token)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (ti *TokenIssuer) VerifyRefresh(token string) (*AdminClaims, error) {
	return ti.refresh.verify(token)
}

func (ti *TokenIssuer) claimsFor(admin *domain.Admin) *AdminClaims {
	return &AdminClaims{
		AdminID:   admin.ID,
		Email:     admin.Email,
		Role:      admin.Role,
		TokenType: principalType,
		// A unique jti keeps every minted token distinct; iat/exp alone have
		// second granularity, which would make rapid rotations byte-identical.
		RegisteredClaims: jwt.RegisteredClaims{ID: uuid.NewString()},
	}
}
