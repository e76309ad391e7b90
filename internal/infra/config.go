package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database drivers understood by DB_DRIVER.
const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// AI providers understood by AI_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string
	DBMaxConns  int

	AIProvider    string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	AITimeout     time.Duration

	GoogleSheetID            string
	GoogleServiceAccountJSON string
	GoogleServiceAccountMail string
	GooglePrivateKey         string

	AdminPassphrase string
	AdminTokenTTL   time.Duration

	CORSAllowedOrigins []string
	RateLimitPerMin    int
	GoalSponsors       int
	StaticDir          string
	BackupDir          string
	BackupKeep         int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Missing credentials are not errors: the corresponding feature degrades instead.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),
		Port:     getEnv("PORT", "3000"),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),

		AIProvider:    strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AITimeout:     time.Second * time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 15)),

		GoogleSheetID:            strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID")),
		GoogleServiceAccountJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON_BASE64")),
		GoogleServiceAccountMail: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL")),
		GooglePrivateKey:         os.Getenv("GOOGLE_PRIVATE_KEY"),

		AdminPassphrase: os.Getenv("ADMIN_PASSPHRASE"),
		AdminTokenTTL:   time.Hour * time.Duration(getEnvInt("ADMIN_TOKEN_TTL_HOURS", 12)),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		GoalSponsors:       getEnvInt("GOAL_SPONSORS", 60),
		StaticDir:          strings.TrimSpace(os.Getenv("STATIC_DIR")),
		BackupDir:          strings.TrimSpace(os.Getenv("BACKUP_DIR")),
		BackupKeep:         getEnvInt("BACKUP_KEEP", 14),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	driver, err := resolveDriver(strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER"))), cfg)
	if err != nil {
		return nil, err
	}
	cfg.DBDriver = driver

	switch cfg.AIProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("AI_PROVIDER %q is not supported", cfg.AIProvider)
	}

	return cfg, nil
}

func resolveDriver(explicit string, cfg *Config) (string, error) {
	switch explicit {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return "", fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
		return DriverPostgres, nil
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = "sponsors.db"
		}
		return DriverSQLite, nil
	case DriverMemory:
		return DriverMemory, nil
	case "", "none":
	default:
		return "", fmt.Errorf("DB_DRIVER %q is not supported", explicit)
	}
	if explicit == "none" {
		return DriverNone, nil
	}
	switch {
	case cfg.DatabaseURL != "":
		return DriverPostgres, nil
	case cfg.SQLitePath != "":
		return DriverSQLite, nil
	}
	return DriverNone, nil
}

// AIConfigured reports whether the selected AI provider has a key.
func (c *Config) AIConfigured() bool {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey != ""
	}
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
