// Package handlers provides the HTTP handlers of the marketplace API.
//
// This file defines the shared response helpers. Every error is written as
// an ErrorResponse; 5xx errors are logged with the request-scoped logger.
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "product not found"
//	}
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/apple-market/internal/http/middleware"
	"github.com/tbourn/apple-market/internal/services"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/login"

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"product not found"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr writes the response for a service error. internalCode replaces
// the generic internal_error code on 5xx. Internal error details are logged
// and never sent to the client.
func failErr(c *gin.Context, err error, internalCode string) {
	if errors.Is(err, services.ErrUnauthenticated) {
		unauthenticated(c)
		return
	}
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		if internalCode != "" {
			code = internalCode
		}
		_ = c.Error(err)
		fail(c, status, code, "internal server error")
		return
	}
	msg := err.Error()
	if status == http.StatusRequestEntityTooLarge {
		msg = "request body too large"
	}
	fail(c, status, code, msg)
}

// unauthenticated sends browsers to the login page with 303 See Other and
// answers other clients with 401 plus a Location hint.
func unauthenticated(c *gin.Context) {
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, LoginPath)
		c.Abort()
		return
	}
	c.Header("Location", LoginPath)
	fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, services.ErrUnauthenticated.Error())
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
