package service

import (
	"net/http"

	apperrors "github.com/spec-kit/marketplace-admin/pkg/util/errorutil"
)

// Expected auth outcomes, typed so callers can branch with errors.Is.
// Credential and token failures stay low-information: unknown email and wrong
// password share one error, and token failures never reveal which check
// rejected the token.
var (
	ErrInvalidCredentials       = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)
	ErrAccountDeactivated       = apperrors.NewDomainError("ACCOUNT_DEACTIVATED", "account is deactivated", http.StatusUnauthorized, nil)
	ErrInvalidOrExpiredToken    = apperrors.NewDomainError("INVALID_TOKEN", "invalid or expired token", http.StatusUnauthorized, nil)
	ErrAdminNotFound            = apperrors.NewDomainError("ADMIN_NOT_FOUND", "admin not found", http.StatusNotFound, nil)
	ErrAdminNotFoundOrInactive  = apperrors.NewDomainError("ADMIN_NOT_FOUND_OR_INACTIVE", "admin not found or inactive", http.StatusUnauthorized, nil)
	ErrIncorrectCurrentPassword = apperrors.NewDomainError("INCORRECT_CURRENT_PASSWORD", "current password is incorrect", http.StatusBadRequest, nil)
	ErrTooManyLoginAttempts     = apperrors.NewDomainError("TOO_MANY_REQUESTS", "too many login attempts, try again later", http.StatusTooManyRequests, nil)

	ErrRoleNotFound      = apperrors.NewDomainError("ROLE_NOT_FOUND", "role not found", http.StatusNotFound, nil)
	ErrRoleNameTaken     = apperrors.NewDomainError("ROLE_NAME_TAKEN", "role name already exists", http.StatusConflict, nil)
	ErrEmailTaken        = apperrors.NewDomainError("EMAIL_TAKEN", "email already registered", http.StatusConflict, nil)
	ErrInvalidLegacyRole = apperrors.NewDomainError("INVALID_ROLE", "unknown legacy role", http.StatusBadRequest, nil)
)
