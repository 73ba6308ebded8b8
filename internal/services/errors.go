// Package services defines the business logic for accounts, phone listings,
// and buyer/administrator conversations. This file centralizes service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

// Access errors.
var (
	// ErrUnauthenticated is returned when an operation needs a logged-in
	// principal and none is present, or a session token does not resolve.
	ErrUnauthenticated = errors.New("login required")

	// ErrForbidden is returned when the principal is logged in but not
	// allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
)

// Account errors.
var (
	// ErrInvalidCredentialsInput is returned when a username or password is
	// empty or otherwise unusable.
	ErrInvalidCredentialsInput = errors.New("username and password are required")

	// ErrUsernameTaken is returned by Register when the username exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Listing errors.
var (
	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidProduct is returned when a product has no model.
	ErrInvalidProduct = errors.New("product model is required")

	// ErrUnknownModel is returned when strict model checking is enabled and
	// the model is not in the allow-list.
	ErrUnknownModel = errors.New("unknown device model")

	// ErrInvalidUpload is returned when an uploaded file cannot be stored
	// under a usable name.
	ErrInvalidUpload = errors.New("invalid upload")
)

// Messaging errors.
var (
	// ErrUserNotFound indicates that the conversation's user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyMessage is returned when a message is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a message exceeds the configured maximum
	// length in runes.
	ErrTooLong = errors.New("message too long")
)
