package auth

import (
	"errors"
	"net/http"
)

// Code is a stable machine-readable failure code. The set is closed; the
// transport layer maps codes to HTTP statuses via HTTPStatus.
type Code string

const (
	CodeInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "AUTH_INVALID_TOKEN"
	CodeInvalidRefresh     Code = "AUTH_INVALID_REFRESH"
	CodeSessionRevoked     Code = "AUTH_SESSION_REVOKED"
	CodeRefreshExpired     Code = "AUTH_REFRESH_EXPIRED"
	CodeTooManyRequests    Code = "AUTH_TOO_MANY_REQUESTS"
	CodeWeakPassword       Code = "AUTH_WEAK_PASSWORD"
	CodePasswordIdentifier Code = "AUTH_PASSWORD_IDENTIFIER"
	CodeConflict           Code = "AUTH_CONFLICT"
	CodeInvalidScope       Code = "AUTH_INVALID_SCOPE"
	CodeUserNotFound       Code = "AUTH_USER_NOT_FOUND"
	CodeSessionNotFound    Code = "AUTH_SESSION_NOT_FOUND"
	CodeInvalidInput       Code = "AUTH_INVALID_INPUT"
)

// Error is a typed business-rule failure. It propagates to the caller
// unmodified; unexpected storage errors are wrapped separately and never
// carry a Code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// One variant per taxonomy entry. Login failures never distinguish a missing
// account from a wrong password.
var (
	ErrInvalidCredentials = &Error{CodeInvalidCredentials, "invalid email or password"}
	ErrInvalidToken       = &Error{CodeInvalidToken, "invalid or expired token"}
	ErrInvalidRefresh     = &Error{CodeInvalidRefresh, "invalid refresh token"}
	ErrSessionRevoked     = &Error{CodeSessionRevoked, "session has been revoked"}
	ErrRefreshExpired     = &Error{CodeRefreshExpired, "refresh token expired"}
	ErrTooManyRequests    = &Error{CodeTooManyRequests, "too many requests; try again later"}
	ErrWeakPassword       = &Error{CodeWeakPassword, "password does not meet the policy"}
	ErrPasswordIdentifier = &Error{CodePasswordIdentifier, "password must not contain your username or email"}
	ErrConflict           = &Error{CodeConflict, "an account with this email or username already exists"}
	ErrInvalidScope       = &Error{CodeInvalidScope, "exactly one revocation scope must be specified"}
	ErrUserNotFound       = &Error{CodeUserNotFound, "user not found"}
	ErrSessionNotFound    = &Error{CodeSessionNotFound, "session not found"}
	ErrInvalidInput       = &Error{CodeInvalidInput, "invalid email or username format"}
)

// CodeOf returns the failure code carried by err, or "" for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var httpStatusByCode = map[Code]int{
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeInvalidToken:       http.StatusBadRequest,
	CodeInvalidRefresh:     http.StatusUnauthorized,
	CodeSessionRevoked:     http.StatusUnauthorized,
	CodeRefreshExpired:     http.StatusUnauthorized,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeWeakPassword:       http.StatusBadRequest,
	CodePasswordIdentifier: http.StatusBadRequest,
	CodeConflict:           http.StatusConflict,
	CodeInvalidScope:       http.StatusBadRequest,
	CodeUserNotFound:       http.StatusNotFound,
	CodeSessionNotFound:    http.StatusNotFound,
	CodeInvalidInput:       http.StatusBadRequest,
}

// HTTPStatus maps err to an HTTP status code. Untyped errors map to 500.
func HTTPStatus(err error) int {
	if s, ok := httpStatusByCode[CodeOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
