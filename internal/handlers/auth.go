package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/middlewares"
	"github.com/dmitrymomot/userdesk/pkg/access"
	"github.com/dmitrymomot/userdesk/pkg/validate"
)

// Messages shown by the auth pages.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgAlreadyLoggedIn     = "You are already logged in"
	MsgLoggedOut           = "You have been logged out"
)

// Login results reported to the Recorder.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
	LoginInvalid = "invalid"
)

// sessionUserKey is where the logged in user id is kept in the session.
const sessionUserKey = "user_id"

// TokenIssuer issues auth tokens. *jwt.Service implements it.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	TTL() time.Duration
}

// Auth handles login, registration and logout.
type Auth struct {
	users  *users.Repository
	tokens TokenIssuer
	config
}

// NewAuth returns the auth handler.
func NewAuth(repo *users.Repository, tokens TokenIssuer, opts ...Option) *Auth {
	return &Auth{users: repo, tokens: tokens, config: newConfig(opts)}
}

// Routes declares the /auth routes. Login and register forms render from
// the pages tree; the profile page only needs a rule.
func (h *Auth) Routes(r internal.Router) {
	r.GET("/auth/login", h.loginForm)
	r.POST("/auth/login", h.login, h.throttle...)
	r.GET("/auth/register", h.registerForm)
	r.POST("/auth/register", h.register, h.throttle...)
	r.GET("/auth/logout", h.logout)

	r.Protect("/auth/profile", access.All, access.Authenticated)
}

func (h *Auth) loginForm(c internal.Context) error {
	if c.IsAuthenticated() {
		return h.alreadyLoggedIn(c)
	}
	return c.SendPage(pageLogin, map[string]any{"Redirect": localRedirect(c.Query("redirect"))})
}

func (h *Auth) login(c internal.Context) error {
	username, password := c.FormValue("username"), c.FormValue("password")
	data := map[string]any{
		"Form":     users.Input{"username": username},
		"Redirect": localRedirect(c.Query("redirect")),
	}

	creds := validate.Data{"username": username, "password": password}
	if res := validate.Validate(creds, users.LoginSchema); !res.Valid {
		h.stats.Login(LoginInvalid)
		data["Errors"] = users.Errors{users.AllKey: MsgCredentialsRequired}
		return c.SendPage(pageLogin, data)
	}

	u, err := h.users.Authenticate(c, username, password)
	if err != nil {
		return err
	}
	if u == nil {
		h.stats.Login(LoginFailed)
		c.LogInfo("login failed", slog.String("username", username))
		data["Errors"] = users.Errors{users.AllKey: MsgInvalidCredentials}
		return c.SendPage(pageLogin, data)
	}

	if err := h.signIn(c, u); err != nil {
		return err
	}
	h.stats.Login(LoginSuccess)
	c.LogInfo("user logged in", slog.String("user_id", u.ID))

	if err := c.Flash(fmt.Sprintf("You're now logged in as %s!", u.Username), internal.AlertSuccess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, redirectTarget(c))
}

func (h *Auth) registerForm(c internal.Context) error {
	if c.IsAuthenticated() {
		return h.alreadyLoggedIn(c)
	}
	return c.SendPage(pageRegister, map[string]any{"Redirect": localRedirect(c.Query("redirect"))})
}

func (h *Auth) register(c internal.Context) error {
	in := formInput(c, "username", "email", "password", "name")
	in["role"] = string(users.RoleUser)

	res, err := h.users.Create(c, in)
	if err != nil {
		return err
	}
	if !res.OK() {
		delete(in, "password")
		return c.SendPage(pageRegister, map[string]any{
			"Form":     in,
			"Errors":   res.Errors,
			"Redirect": localRedirect(c.Query("redirect")),
		})
	}
	h.stats.UserChanged("create")

	created, err := h.users.FindByID(c, res.Data)
	if err != nil {
		return err
	}
	if !created.OK() {
		return notFound(created.Errors)
	}
	if err := h.signIn(c, created.Data); err != nil {
		return err
	}
	c.LogInfo("user registered", slog.String("user_id", res.Data))

	if err := c.Flash(fmt.Sprintf("You're now logged in as new user %s!", created.Data.Username), internal.AlertSuccess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, redirectTarget(c))
}

// logout always succeeds. An alert carried into this request, such as the
// one set after a password change, is passed on instead of the default.
func (h *Auth) logout(c internal.Context) error {
	if err := c.DestroySession(); err != nil {
		c.LogWarn("failed to destroy session", slog.Any("error", err))
	}
	c.Cookies().Delete(c.Response(), middlewares.AuthCookie)

	switch internal.Negotiate(c.Header("Accept")) {
	case internal.AcceptHTML:
		alert := internal.Alert{Message: MsgLoggedOut, Type: internal.AlertSuccess}
		if prev := c.Alert(); prev != nil {
			alert = *prev
		}
		if err := c.Flash(alert.Message, alert.Type); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/")
	case internal.AcceptJSON:
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	default:
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *Auth) alreadyLoggedIn(c internal.Context) error {
	if err := c.Flash(MsgAlreadyLoggedIn, internal.AlertInfo); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// signIn sets the auth cookie and records the user in the session.
func (h *Auth) signIn(c internal.Context, u *users.User) error {
	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		return err
	}
	c.Cookies().Set(c.Response(), middlewares.AuthCookie, token, h.tokens.TTL())
	if sess := c.Session(); sess != nil {
		sess.Put(sessionUserKey, u.ID)
	}
	c.SetUser(u)
	return nil
}
