package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes select which login surfaces are mounted in front of /ask.
const (
	AuthNone  = "none"
	AuthBasic = "basic"
	AuthOAuth = "oauth"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port     string
	LogLevel string

	AuthMode           string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	AIAPIKey      string
	GenModel      string

	MaxDocumentChars      int
	CacheSize             int
	PDFPageMarkers        bool
	ConcurrentCompletions bool

	RequestTimeout time.Duration
	MaxUploadBytes int64
	AllowedOrigins []string
	StaticDir      string

	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	AwsEndpoint    string
	ArchiveBucket  string
	ArchiveWorkers int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AuthMode:           strings.ToLower(getEnv("AUTH_MODE", AuthNone)),
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite://docsense.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 30*time.Minute),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8000/google-callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:8000/"),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GenModel:      getEnv("GEN_MODEL", "gemini-1.5-flash"),

		MaxDocumentChars:      getEnvInt("MAX_DOCUMENT_CHARS", 6000),
		CacheSize:             getEnvInt("CACHE_SIZE", 256),
		PDFPageMarkers:        getEnvBool("PDF_PAGE_MARKERS", false),
		ConcurrentCompletions: getEnvBool("CONCURRENT_COMPLETIONS", true),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		StaticDir:      getEnv("STATIC_DIR", "./web"),

		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		AwsEndpoint:    getEnv("AWS_ENDPOINT_URL", ""),
		ArchiveBucket:  getEnv("ARCHIVE_BUCKET", ""),
		ArchiveWorkers: getEnvInt("ARCHIVE_WORKERS", 2),
	}
}

// Validate reports settings that would leave the server half-configured.
func (c *Config) Validate() error {
	var errs []error

	switch c.AuthMode {
	case AuthNone, AuthBasic, AuthOAuth:
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE %q is not one of none, basic, oauth", c.AuthMode))
	}
	if c.AuthEnabled() && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE is not none"))
	}
	if c.AuthMode == AuthOAuth && (c.GoogleClientID == "" || c.GoogleClientSecret == "") {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required for AUTH_MODE=oauth"))
	}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY not set"))
		}
	case ProviderGemini:
		if c.AIAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not one of openai, gemini", c.LLMProvider))
	}

	if c.MaxDocumentChars <= 0 {
		errs = append(errs, errors.New("MAX_DOCUMENT_CHARS must be positive"))
	}
	if c.CacheSize < 0 {
		errs = append(errs, errors.New("CACHE_SIZE must not be negative"))
	}
	if c.ArchiveBucket != "" && (c.AwsAccessKey == "" || c.AwsSecretKey == "") {
		errs = append(errs, errors.New("AWS credentials are required when ARCHIVE_BUCKET is set"))
	}

	return errors.Join(errs...)
}

// AuthEnabled reports whether /ask sits behind the JWT middleware.
func (c *Config) AuthEnabled() bool {
	return c.AuthMode == AuthBasic || c.AuthMode == AuthOAuth
}

// NeedsDatabase reports whether any component persists rows.
func (c *Config) NeedsDatabase() bool {
	return c.AuthEnabled() || c.ArchiveBucket != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("env value is not a bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("env value is not a duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
