package identity

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Domain error taxonomy. Unknown email, wrong password, and deleted
// accounts all collapse into ErrInvalidCredentials so callers cannot
// probe which emails exist.
var (
	// ErrInvalidCredentials is the uniform login failure
	ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(goerrors.CodeUnauthorized)

	// ErrAccountLocked is returned while the lockout window is open
	ErrAccountLocked = goerrors.New("account is locked, try again later", goerrors.CategoryRateLimit).
				WithTextCode("ACCOUNT_LOCKED").
				WithCode(goerrors.CodeUnauthorized)

	// ErrAccountNotActive is returned for inactive or suspended accounts
	ErrAccountNotActive = goerrors.New("account is not active", goerrors.CategoryAuth).
				WithTextCode("ACCOUNT_NOT_ACTIVE").
				WithCode(goerrors.CodeUnauthorized)

	// ErrDuplicateEmail is returned when registering an email already in use
	ErrDuplicateEmail = goerrors.New("email address is already in use", goerrors.CategoryConflict).
				WithTextCode("DUPLICATE_EMAIL").
				WithCode(goerrors.CodeConflict)

	// ErrUserNotFound is returned for missing or soft deleted accounts on
	// lifecycle operations
	ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
			WithTextCode("USER_NOT_FOUND").
			WithCode(goerrors.CodeNotFound)

	// ErrTokenInvalid is the uniform token validation failure, the
	// specific reason is logged and never disclosed
	ErrTokenInvalid = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
			WithTextCode("TOKEN_INVALID").
			WithCode(goerrors.CodeUnauthorized)

	// ErrTokenExpired marks a session token past its exact expiry
	ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(goerrors.CodeUnauthorized)

	// ErrTokenMalformed covers every other token parse or signature failure
	ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(goerrors.CodeUnauthorized)

	// ErrNoEmptyString rejects empty secrets before hashing
	ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
				WithTextCode("EMPTY_VALUE").
				WithCode(goerrors.CodeBadRequest)
)

// IsInvalidCredentials reports the uniform credential failure
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsAccountLocked reports a lockout rejection
func IsAccountLocked(err error) bool {
	return errors.Is(err, ErrAccountLocked)
}

// IsAccountNotActive reports a status rejection
func IsAccountNotActive(err error) bool {
	return errors.Is(err, ErrAccountNotActive)
}

// IsDuplicateEmail reports an email uniqueness conflict
func IsDuplicateEmail(err error) bool {
	return errors.Is(err, ErrDuplicateEmail)
}

// IsUserNotFound reports a missing or deleted account
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsTokenInvalid reports the uniform token failure
func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenInvalid)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
