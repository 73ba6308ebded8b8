// Package handlers defines HTTP-layer error codes used across all endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them. Every
// error response carries an HTTP status and one of these codes:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "username already taken"
//	}
//
// statusFor is the single place where service errors become statuses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/apple-market/internal/services"
	"github.com/tbourn/apple-market/internal/utils"
)

const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodePayloadTooLarge = "payload_too_large"

	// Domain-specific:
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// errBadForm marks a request body that could not be parsed.
var errBadForm = errors.New("malformed form body")

// statusFor maps an error to an HTTP status and error code. Unknown errors
// are 500 with the internal_error code.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, services.ErrUsernameTaken):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, services.ErrInvalidCredentialsInput),
		errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrUnknownModel),
		errors.Is(err, services.ErrInvalidUpload),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrTooLong),
		errors.Is(err, utils.ErrInvalidNumber),
		errors.Is(err, errBadForm):
		return http.StatusBadRequest, ErrCodeBadRequest
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
