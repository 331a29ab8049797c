package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/analysis"
	"resume-scanner/internal/auth"
	"resume-scanner/internal/jobdescriptions"
	"resume-scanner/internal/llm"
	"resume-scanner/internal/llm/ollama"
	"resume-scanner/internal/llm/openai"
	"resume-scanner/internal/mailer"
	"resume-scanner/internal/matching"
	"resume-scanner/internal/passwordreset"
	"resume-scanner/internal/resumes"
	"resume-scanner/internal/services/health"
	sharedauth "resume-scanner/internal/shared/auth"
	"resume-scanner/internal/shared/config"
	"resume-scanner/internal/shared/server"
	"resume-scanner/internal/shared/storage/db"
	"resume-scanner/internal/shared/storage/object"
	localstore "resume-scanner/internal/shared/storage/object/local"
	s3store "resume-scanner/internal/shared/storage/object/s3"
	"resume-scanner/internal/shared/telemetry"
	"resume-scanner/internal/usage"
	"resume-scanner/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Client
	States auth.StateStore
	Tokens *sharedauth.Tokens

	UsersService         *users.Service
	UsageService         *usage.Service
	AnalysisService      *analysis.Service
	ResumesService       *resumes.Service
	JobDescService       *jobdescriptions.Service
	MatchingService      *matching.Service
	PasswordResetService *passwordreset.Service
	Mailer               *mailer.Mailer
}

type buildOptions struct {
	llm    llm.Client
	sender passwordreset.Sender
}

// Option overrides a dependency, mostly for tests.
type Option func(*buildOptions)

// WithLLM replaces the configured LLM provider.
func WithLLM(c llm.Client) Option {
	return func(o *buildOptions) { o.llm = c }
}

// WithResetSender replaces the SMTP mailer used for password reset links.
func WithResetSender(s passwordreset.Sender) Option {
	return func(o *buildOptions) { o.sender = s }
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		if !cfg.IsDevLike() {
			return nil, errors.New("SECRET_KEY is required")
		}
		cfg.SecretKey = "dev-secret"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := bo.llm
	if client == nil {
		client, err = NewLLM(cfg)
		if err != nil {
			return nil, err
		}
	}

	states, err := buildStateStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    client,
		States: states,
		Tokens: sharedauth.NewTokens(cfg.SecretKey, cfg.SessionTTL),
	}
	app.Router = buildServices(app, bo)
	return app, nil
}

// Close releases the database pool and the state store connection.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if rs, ok := a.States.(*auth.RedisStateStore); ok {
		errs = append(errs, rs.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// NewLLM builds the configured provider client wrapped with retries. Unknown
// providers and a missing OpenAI key yield llm.Unavailable, which sends every
// operation down its fallback path.
func NewLLM(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_unavailable", map[string]any{"provider": "openai", "reason": "OPENAI_API_KEY empty"})
			return llm.Unavailable{}, nil
		}
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return llm.WithRetry(c), nil
	case "ollama":
		c, err := ollama.New(cfg.OllamaAPI, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return llm.WithRetry(c), nil
	default:
		telemetry.Warn("bootstrap.llm_unavailable", map[string]any{"provider": cfg.LLMProvider})
		return llm.Unavailable{}, nil
	}
}

func buildStateStore(ctx context.Context, cfg config.Config) (auth.StateStore, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return auth.NewMemoryStateStore(), nil
	}
	rs, err := auth.NewRedisStateStore(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
			return auth.NewMemoryStateStore(), nil
		}
		return nil, err
	}
	return rs, nil
}

func buildServices(app *App, bo buildOptions) *gin.Engine {
	cfg := app.Config

	var (
		userRepo  users.Repo
		scanRepo  resumes.Repo
		jdRepo    jobdescriptions.Repo
		resetRepo passwordreset.Repo
		usageSvc  *usage.Service
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		scanRepo = &resumes.PGRepo{DB: app.DB}
		jdRepo = &jobdescriptions.PGRepo{DB: app.DB}
		resetRepo = &passwordreset.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB), cfg.MaxMonthlyScans, cfg.UnlimitedEmails)
	} else {
		userRepo = users.NewMemoryRepo()
		scanRepo = resumes.NewMemoryRepo()
		jdRepo = jobdescriptions.NewMemoryRepo()
		resetRepo = passwordreset.NewMemoryRepo()
		usageSvc = usage.NewService(cfg.MaxMonthlyScans, cfg.UnlimitedEmails)
	}

	app.UsersService = users.NewService(userRepo, app.Store, cfg.MaxPhotoSize)
	app.UsageService = usageSvc
	app.AnalysisService = analysis.NewService(app.LLM)
	app.ResumesService = resumes.NewService(scanRepo, app.Store, app.AnalysisService, usageSvc, cfg.MaxFileSize)
	app.JobDescService = jobdescriptions.NewService(jdRepo)
	app.MatchingService = &matching.Service{
		Resumes:  app.ResumesService,
		JDs:      app.JobDescService,
		Profiles: app.UsersService,
		Analysis: app.AnalysisService,
		Quota:    usageSvc,
	}

	app.Mailer = mailer.New(mailer.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		UseTLS:      cfg.SMTP.UseTLS,
		FromEmail:   cfg.SMTP.FromEmail,
		FromName:    cfg.SMTP.FromName,
		ResetURL:    cfg.PasswordResetURL,
		ExpiryHours: int(cfg.PasswordResetTTL / time.Hour),
	})
	var sender passwordreset.Sender = app.Mailer
	if bo.sender != nil {
		sender = bo.sender
	}
	app.PasswordResetService = passwordreset.NewService(resetRepo, app.UsersService, sender, cfg.PasswordResetTTL)

	authHandler := &auth.Handler{
		Users:        app.UsersService,
		Tokens:       app.Tokens,
		CookieName:   cfg.SessionCookieName,
		SecureCookie: !cfg.IsDevLike(),
		States:       app.States,
		UIRedirect:   cfg.UIRedirectURL,
		// unconfigured providers stay mounted and report auth_not_configured
		Providers: []*auth.Provider{
			auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
			auth.NewLinkedInProvider(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURL),
		},
	}

	return server.NewRouter(server.RouterDeps{
		Config:               cfg,
		Tokens:               app.Tokens,
		Health:               health.NewService(app.DB),
		AuthHandler:          authHandler,
		PasswordResetHandler: passwordreset.NewHandler(app.PasswordResetService),
		UserHandler:          users.NewHandler(app.UsersService),
		UsageHandler:         usage.NewHandler(usageSvc),
		ResumeHandler:        resumes.NewHandler(app.ResumesService),
		JobDescHandler:       jobdescriptions.NewHandler(app.JobDescService),
		MatchingHandler:      matching.NewHandler(app.MatchingService),
	})
}
