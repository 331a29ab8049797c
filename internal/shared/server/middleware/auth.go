package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/shared/auth"
	"resume-scanner/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// AuthConfig controls the Auth middleware.
type AuthConfig struct {
	Tokens     TokenVerifier
	CookieName string
	// PublicPrefixes are path prefixes served without a session.
	PublicPrefixes []string
}

// Auth resolves the session from a Bearer header or the session cookie and
// stores the identity in context. Requests without a valid session get 401
// unless their path is public.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		if isPublic(c.Request.URL.Path, cfg.PublicPrefixes) {
			c.Next()
			return
		}

		token, ok := sessionToken(c, cfg.CookieName)
		if !ok || cfg.Tokens == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
			return
		}

		claims, err := cfg.Tokens.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.UserID)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		return token, token != ""
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil || strings.TrimSpace(cookie) == "" {
		return "", false
	}
	return cookie, true
}

func isPublic(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == path || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
