// Account HTTP handlers.
//
// This file exposes registration, login and logout:
//   - GET/POST /register
//   - GET/POST /login
//   - GET      /logout
//
// Bodies may be form-encoded or JSON. A successful login sets the session
// cookie and also returns the token for clients that prefer a bearer header.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/http/middleware"
)

// CredentialsRequest is the payload of /register and /login.
type CredentialsRequest struct {
	Username string `json:"username" form:"username" example:"alice"`
	Password string `json:"password" form:"password" example:"correct horse battery staple"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Principal domain.Principal `json:"principal"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func credentialsForm(action string) FormDescriptor {
	return FormDescriptor{
		Action:  action,
		Method:  http.MethodPost,
		Enctype: "application/x-www-form-urlencoded",
		Fields: []FormField{
			{Name: "username", Type: "text", Required: true},
			{Name: "password", Type: "password", Required: true},
		},
	}
}

// RegisterForm godoc
// @ID          registerForm
// @Summary     Registration form descriptor
// @Tags        Accounts
// @Produce     json
// @Success     200  {object}  handlers.FormDescriptor
// @Router      /register [get]
func (h *Handlers) RegisterForm(c *gin.Context) {
	ok(c, http.StatusOK, credentialsForm("/register"))
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Creates a non-admin account. The username must be unused.
// @Tags        Accounts
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Param       body  body      handlers.CredentialsRequest  true  "Credentials"
// @Success     201   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Missing username or password"
// @Failure     409   {object}  handlers.ErrorResponse  "Username taken"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req CredentialsRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, u)
}

// LoginForm godoc
// @ID          loginForm
// @Summary     Login form descriptor
// @Tags        Accounts
// @Produce     json
// @Success     200  {object}  handlers.FormDescriptor
// @Router      /login [get]
func (h *Handlers) LoginForm(c *gin.Context) {
	ok(c, http.StatusOK, credentialsForm(LoginPath))
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Checks the credentials, opens a session, sets the session cookie and returns the token.
// @Tags        Accounts
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Param       body  body      handlers.CredentialsRequest  true  "Credentials"
// @Success     200   {object}  handlers.LoginResponse
// @Header      200   {string}  Set-Cookie  "session=<token>; HttpOnly; SameSite=Lax"
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed body"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid username or password"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bind(c, &req) {
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failErr(c, err, "")
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sess.Token, maxAge, "/", "", h.opts.CookieSecure, true)

	middleware.LoggerFrom(c).Info().Uint("user_id", sess.Principal.UserID).Msg("login")
	ok(c, http.StatusOK, LoginResponse{
		Principal: sess.Principal,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Ends the current session and clears the session cookie. Browsers are redirected to the listing.
// @Tags        Accounts
// @Success     204  {string}  string  "No Content"
// @Success     303  {string}  string  "See Other"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /logout [get]
func (h *Handlers) Logout(c *gin.Context) {
	p, allowed := requireLogin(c)
	if !allowed {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), p); err != nil {
		failErr(c, err, "")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	noContent(c)
}
