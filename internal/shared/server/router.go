package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/auth"
	"resume-scanner/internal/jobdescriptions"
	"resume-scanner/internal/matching"
	"resume-scanner/internal/passwordreset"
	"resume-scanner/internal/resumes"
	"resume-scanner/internal/services/health"
	"resume-scanner/internal/shared/config"
	"resume-scanner/internal/shared/metrics"
	"resume-scanner/internal/shared/server/middleware"
	"resume-scanner/internal/shared/server/respond"
	"resume-scanner/internal/usage"
	"resume-scanner/internal/users"
)

const apiPrefix = "/api/v1"

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config               config.Config
	Tokens               middleware.TokenVerifier
	Health               *health.Service
	AuthHandler          *auth.Handler
	PasswordResetHandler *passwordreset.Handler
	UserHandler          *users.Handler
	UsageHandler         *usage.Handler
	ResumeHandler        *resumes.Handler
	JobDescHandler       *jobdescriptions.Handler
	MatchingHandler      *matching.Handler
	RateLimiter          *middleware.RateLimiter
}

// PublicPrefixes lists the paths served without a session.
func PublicPrefixes() []string {
	return []string{
		apiPrefix + "/health",
		"/metrics",
		apiPrefix + "/auth/",
		"/profile-photo/",
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(middleware.AuthConfig{
			Tokens:         deps.Tokens,
			CookieName:     cfg.SessionCookieName,
			PublicPrefixes: PublicPrefixes(),
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"AUTH": {Rate: cfg.AuthRateLimit, Burst: cfg.AuthRateLimitBurst},
			},
			GroupFor: middleware.PathGroups(map[string]string{
				"POST " + apiPrefix + "/auth/login":           "AUTH",
				"POST " + apiPrefix + "/auth/register":        "AUTH",
				"POST " + apiPrefix + "/auth/forgot-password": "AUTH",
			}),
			Limiter: deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterPublicRoutes(r)
	}

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	authGroup := api.Group("/auth")
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublicRoutes(authGroup)
		deps.AuthHandler.RegisterRoutes(api)
	}
	if deps.PasswordResetHandler != nil {
		deps.PasswordResetHandler.RegisterRoutes(authGroup)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
		if cfg.IsDevLike() {
			deps.UsageHandler.RegisterDevRoutes(api.Group("/dev"))
		}
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.JobDescHandler != nil {
		deps.JobDescHandler.RegisterRoutes(api)
	}
	if deps.MatchingHandler != nil {
		deps.MatchingHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
