// Package auth serves password and OAuth login flows and issues session tokens.
package auth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sharedauth "resume-scanner/internal/shared/auth"
	"resume-scanner/internal/shared/server/middleware"
	"resume-scanner/internal/shared/server/respond"
	"resume-scanner/internal/shared/telemetry"
	"resume-scanner/internal/users"
)

const defaultStateTTL = 5 * time.Minute

type Handler struct {
	Users        *users.Service
	Tokens       *sharedauth.Tokens
	CookieName   string
	SecureCookie bool
	Providers    []*Provider
	States       StateStore
	StateTTL     time.Duration
	UIRedirect   string
}

// RegisterPublicRoutes mounts the routes reachable without a session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
	for _, p := range h.Providers {
		p := p
		rg.GET("/"+p.Name+"/start", func(c *gin.Context) { h.start(c, p) })
		rg.GET("/"+p.Name+"/callback", func(c *gin.Context) { h.callback(c, p) })
		rg.POST("/"+p.Name, func(c *gin.Context) { h.exchange(c, p) })
	}
}

// RegisterRoutes mounts the authenticated routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type exchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		respond.Error(c, http.StatusBadRequest, "email_taken", "Email already registered", nil)
		return
	case errors.Is(err, users.ErrEmailRequired):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Email is required", nil)
		return
	case errors.Is(err, users.ErrPasswordTooShort):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Password must be at least 6 characters long", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
		return
	}
	h.issueSession(c, user, "User registered successfully")
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
		return
	}
	h.issueSession(c, user, "Login successful")
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName(), "", -1, "/", "", h.SecureCookie, true)
	respond.Message(c, http.StatusOK, "Logged out")
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if errors.Is(err, users.ErrNotFound) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
		return
	}
	respond.OK(c, gin.H{"success": true, "user": user.View()})
}

func (h *Handler) start(c *gin.Context, p *Provider) {
	if !p.Configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", p.Name+" auth not configured", nil)
		return
	}
	state := uuid.NewString()
	if err := h.States.Put(c.Request.Context(), state, h.stateTTL()); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to store oauth state", nil)
		return
	}
	c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

func (h *Handler) callback(c *gin.Context, p *Provider) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	ok, err := h.States.Consume(c.Request.Context(), state)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to verify oauth state", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	user, ok := h.oauthUser(c, p, code, "")
	if !ok {
		return
	}
	token, err := h.Tokens.Sign(sharedauth.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	redirectURL, err := appendToken(h.UIRedirect, token)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	h.setCookie(c, token)
	c.Redirect(http.StatusFound, redirectURL)
}

func (h *Handler) exchange(c *gin.Context, p *Provider) {
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "code is required", nil)
		return
	}
	user, ok := h.oauthUser(c, p, req.Code, req.RedirectURI)
	if !ok {
		return
	}
	h.issueSession(c, user, p.Name+" login successful")
}

// oauthUser runs the exchange and resolves the local account, writing the
// error response itself when it fails.
func (h *Handler) oauthUser(c *gin.Context, p *Provider, code, redirectURI string) (users.User, bool) {
	profile, err := p.Exchange(c.Request.Context(), code, redirectURI)
	switch {
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", p.Name+" auth not configured", nil)
		return users.User{}, false
	case errors.Is(err, ErrExchange):
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return users.User{}, false
	case err != nil:
		telemetry.Warn("auth.oauth_profile_failed", map[string]any{"provider": p.Name, "error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return users.User{}, false
	}

	user, err := h.Users.FindOrCreateOAuth(c.Request.Context(), profile)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to resolve account", nil)
		return users.User{}, false
	}
	telemetry.Info("auth.oauth_login", map[string]any{"provider": p.Name, "user_id": user.ID})
	return user, true
}

func (h *Handler) issueSession(c *gin.Context, user users.User, message string) {
	token, err := h.Tokens.Sign(sharedauth.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	h.setCookie(c, token)
	respond.OK(c, gin.H{
		"success":      true,
		"message":      message,
		"access_token": token,
		"token_type":   "bearer",
		"user":         user.View(),
	})
}

func (h *Handler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName(), token, int(h.Tokens.TTL().Seconds()), "/", "", h.SecureCookie, true)
}

func (h *Handler) cookieName() string {
	if h.CookieName == "" {
		return "session"
	}
	return h.CookieName
}

func (h *Handler) stateTTL() time.Duration {
	if h.StateTTL <= 0 {
		return defaultStateTTL
	}
	return h.StateTTL
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
