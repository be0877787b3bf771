package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrValidation      = fmt.Errorf("validation error")
	ErrNotAuthorized   = fmt.Errorf("not authorized")
	ErrNotFound        = fmt.Errorf("not found")
	ErrConflict        = fmt.Errorf("conflict")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")

	ErrUnknownChannel  = fmt.Errorf("%w: unknown channel", ErrValidation)
	ErrSelfContact     = fmt.Errorf("%w: the selected contact email is invalid", ErrValidation)
	ErrEmptyBody       = fmt.Errorf("%w: message body is empty", ErrValidation)
	ErrBodyTooLong     = fmt.Errorf("%w: message body is too long", ErrValidation)
	ErrUnknownStatus   = fmt.Errorf("%w: unknown user status", ErrValidation)
	ErrNoMessageIDs    = fmt.Errorf("%w: at least one message id is required", ErrValidation)
	ErrEmptyWord       = fmt.Errorf("%w: banned word is empty", ErrValidation)
	ErrUserExists      = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrContactExists   = fmt.Errorf("%w: contact already in list", ErrConflict)
	ErrChatNotFound    = fmt.Errorf("%w: chat not found", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("%w: message not found", ErrNotFound)
	ErrSinkFull        = fmt.Errorf("sink buffer full")
)

// HTTPStatus maps a business error to the status code returned to the client.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Is is errors.Is, re-exported so callers only import this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
