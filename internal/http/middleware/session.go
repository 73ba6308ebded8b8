// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's session once per request. The token is
// read from the Authorization bearer header or, failing that, from the
// session cookie. A missing or invalid token leaves the request anonymous;
// handlers and services decide whether that is acceptable.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/apple-market/internal/domain"
)

const (
	// SessionCookie is the cookie that carries the session token.
	SessionCookie = "session"

	principalKey = "principal"
)

// PrincipalResolver turns a session token into a Principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Principal, error)
}

// Authenticate resolves the session token, if any, and stores the resulting
// Principal in the Gin context. It never aborts the request.
func Authenticate(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := SessionToken(c)
		if tok == "" {
			c.Next()
			return
		}
		p, err := resolver.Resolve(c.Request.Context(), tok)
		if err != nil || p == nil {
			LoggerFrom(c).Debug().Err(err).Msg("session token did not resolve")
			c.Next()
			return
		}

		c.Set(principalKey, p)
		l := LoggerFrom(c).With().Uint("user_id", p.UserID).Bool("admin", p.IsAdmin).Logger()
		c.Set(loggerKey, &l)
		c.Next()
	}
}

// SessionToken returns the bearer token from the Authorization header, or
// the session cookie value, or "".
func SessionToken(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

// PrincipalFrom returns the Principal stored by Authenticate, or nil for an
// anonymous request.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// SetPrincipal stores p as the request's Principal.
func SetPrincipal(c *gin.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// principalRole buckets the caller for metrics labels.
func principalRole(c *gin.Context) string {
	p := PrincipalFrom(c)
	switch {
	case p == nil:
		return "anonymous"
	case p.IsAdmin:
		return "admin"
	default:
		return "user"
	}
}
