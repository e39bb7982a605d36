package domain

import (
	"time"

	"github.com/goliatone/go-errors"
)

// Stable text codes surfaced to clients in error payloads.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeInactiveAccount    = "INACTIVE_ACCOUNT"
	TextCodeAccountLocked      = "ACCOUNT_LOCKED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenInvalid       = "TOKEN_INVALID"
	TextCodeAlreadyExists      = "ALREADY_EXISTS"
	TextCodeNotFound           = "NOT_FOUND"
	TextCodeStorage            = "STORAGE_UNAVAILABLE"
)

// ErrInvalidCredentials covers unknown identifiers and wrong passwords alike
// so responses never reveal which one it was.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

var ErrInactiveAccount = errors.New("account is not active", errors.CategoryValidation).
	WithTextCode(TextCodeInactiveAccount).
	WithCode(errors.CodeBadRequest)

var ErrAccountLocked = errors.New("account is temporarily locked", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(errors.CodeForbidden)

var ErrTokenExpired = errors.New("token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

var ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

var ErrAlreadyExists = errors.New("record already exists", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyExists).
	WithCode(errors.CodeConflict)

var ErrNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// AccountLockedError attaches the lockout expiry so clients know when a retry
// can succeed.
func AccountLockedError(until time.Time) *errors.Error {
	return ErrAccountLocked.Clone().WithMetadata(map[string]any{
		"locked_until": until.UTC().Format(time.RFC3339),
	})
}

// StorageError wraps a persistence failure so it surfaces as an internal
// fault instead of being mistaken for a credential problem.
func StorageError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, "storage operation failed").
		WithTextCode(TextCodeStorage).
		WithCode(errors.CodeInternal)
}

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

func IsInvalidCredentials(err error) bool { return hasTextCode(err, TextCodeInvalidCredentials) }
func IsInactiveAccount(err error) bool    { return hasTextCode(err, TextCodeInactiveAccount) }
func IsAccountLocked(err error) bool      { return hasTextCode(err, TextCodeAccountLocked) }
func IsTokenExpired(err error) bool       { return hasTextCode(err, TextCodeTokenExpired) }
func IsTokenInvalid(err error) bool       { return hasTextCode(err, TextCodeTokenInvalid) }
func IsAlreadyExists(err error) bool      { return hasTextCode(err, TextCodeAlreadyExists) }
func IsStorageError(err error) bool       { return hasTextCode(err, TextCodeStorage) }
