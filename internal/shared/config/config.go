package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const devSecret = "dev-secret"

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	PublicBaseURL   string
	Env             string
	DatabaseURL     string
	RedisURL        string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	SecretKey         string
	SessionTTL        time.Duration
	SessionCookieName string

	MaxMonthlyScans int
	UnlimitedEmails []string
	MaxFileSize     int64
	MaxPhotoSize    int64

	SMTP             SMTP
	PasswordResetTTL time.Duration
	PasswordResetURL string

	LLMProvider  string
	LLMModel     string
	OllamaAPI    string
	OpenAIAPIKey string
	LLMTimeout   time.Duration

	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURL    string
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURL  string
	UIRedirectURL        string

	AuthRateLimit      float64
	AuthRateLimitBurst int
}

// SMTP holds outgoing mail settings.
type SMTP struct {
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	FromEmail string
	FromName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		if env == "production" || env == "staging" {
			log.Printf("SECRET_KEY is required in %s", env)
		}
		secret = devSecret
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "ollama"))
	model := getEnv("LLM_MODEL", "")
	if model == "" && provider == "ollama" {
		model = getEnv("OLLAMA_MODEL", "llama3.2:1b")
	}

	smtpUser := getEnv("SMTP_USERNAME", "")

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		Env:             env,
		DatabaseURL:     dbURL,
		RedisURL:        getEnv("REDIS_URL", ""),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		SecretKey:         secret,
		SessionTTL:        time.Duration(getInt("ACCESS_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session"),

		MaxMonthlyScans: getInt("MAX_MONTHLY_SCANS", 10),
		UnlimitedEmails: splitAndTrim(strings.ToLower(getEnv("UNLIMITED_EMAILS", ""))),
		MaxFileSize:     int64(getInt("MAX_FILE_SIZE_MB", 10)) << 20,
		MaxPhotoSize:    int64(getInt("MAX_PHOTO_SIZE_MB", 5)) << 20,

		SMTP: SMTP{
			Host:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:      getInt("SMTP_PORT", 587),
			Username:  smtpUser,
			Password:  getEnv("SMTP_PASSWORD", ""),
			UseTLS:    getBool("SMTP_USE_TLS", true),
			FromEmail: getEnv("FROM_EMAIL", smtpUser),
			FromName:  getEnv("FROM_NAME", "Resume Scanner"),
		},
		PasswordResetTTL: time.Duration(getInt("PASSWORD_RESET_TOKEN_EXPIRE_HOURS", 24)) * time.Hour,
		PasswordResetURL: getEnv("PASSWORD_RESET_URL", "http://localhost:8080/reset-password"),

		LLMProvider:  provider,
		LLMModel:     model,
		OllamaAPI:    getEnv("OLLAMA_API", "http://localhost:11434/api/generate"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		LLMTimeout:   time.Duration(getInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:    getEnv("GOOGLE_REDIRECT_URL", ""),
		LinkedInClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		LinkedInRedirectURL:  getEnv("LINKEDIN_REDIRECT_URL", ""),
		UIRedirectURL:        getEnv("UI_REDIRECT_URL", ""),

		AuthRateLimit:      getFloat("RATE_LIMIT_AUTH_RPS", 0.2),
		AuthRateLimitBurst: getInt("RATE_LIMIT_AUTH_BURST", 5),
	}
}

// IsDevLike reports whether the environment allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float: %v", key, err)
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool: %v", key, err)
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
