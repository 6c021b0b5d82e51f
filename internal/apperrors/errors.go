// Package apperrors defines the error taxonomy shared by repositories,
// services and HTTP controllers. Every domain failure is an *Error
// carrying the HTTP status it maps to and the user-facing French message.
package apperrors

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Code    string // optional machine-readable code, e.g. DUPLICATE_ISBN
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var ErrInternal = &Error{Status: http.StatusInternalServerError, Message: "Erreur interne du serveur"}

// Validation flags malformed or missing input (HTTP 400).
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// NotFound flags an absent referenced entity (HTTP 404).
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict flags a uniqueness or state-precondition violation (HTTP 409).
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// ConflictCode is Conflict with a machine-readable code attached.
func ConflictCode(message, code string) *Error {
	return &Error{Status: http.StatusConflict, Message: message, Code: code}
}

// Unauthorized flags a missing or unverifiable credential (HTTP 401).
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden flags a rejected credential or insufficient role (HTTP 403).
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status an error maps to, defaulting to 500.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
