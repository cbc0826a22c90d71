package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Addr        string
	Environment string
	Storage     string

	DB DBConfig

	JWTSecret   string
	AccessTTL   time.Duration
	EmailAuth   bool
	CORSOrigins []string
	// ProtectedEmails can never be deleted through the API.
	ProtectedEmails []string

	RedisURL  string
	BudgetTTL time.Duration

	ReconcileInterval time.Duration

	TrackerBaseURL string
	TrackerProject string
	TrackerToken   string

	LogLevel  string
	LogFormat string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the connection string understood by lib/pq.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// LoadDotEnv reads .env into the process environment when the file exists.
// Variables already set are left untouched.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() Config {
	return Config{
		Addr:        getenv("API_ADDR", "0.0.0.0:8080"),
		Environment: getenv("ENVIRONMENT", "development"),
		Storage:     strings.ToLower(getenv("STORAGE", StoragePostgres)),
		DB: DBConfig{
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenv("POSTGRES_PORT", "5432"),
			User:     getenv("POSTGRES_USER", "postgres"),
			Password: getenv("POSTGRES_PASSWORD", ""),
			Name:     getenv("POSTGRES_DB", "featurevote"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
		JWTSecret:         getenv("JWT_SECRET", ""),
		AccessTTL:         getenvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		EmailAuth:         getenvBool("AUTH_ALLOW_EMAIL_FALLBACK", false),
		CORSOrigins:       getenvList("CORS_ORIGINS", []string{"*"}),
		ProtectedEmails:   getenvList("PROTECTED_USER_EMAILS", nil),
		RedisURL:          getenv("REDIS_URL", ""),
		BudgetTTL:         getenvDuration("BUDGET_TTL", 30*24*time.Hour),
		ReconcileInterval: getenvDuration("SESSION_RECONCILE_INTERVAL", 10*time.Minute),
		TrackerBaseURL:    getenv("TRACKER_BASE_URL", ""),
		TrackerProject:    getenv("TRACKER_PROJECT", ""),
		TrackerToken:      getenv("TRACKER_TOKEN", ""),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.JWTSecret == "" && !c.EmailAuth {
		return fmt.Errorf("JWT_SECRET is required unless AUTH_ALLOW_EMAIL_FALLBACK is set")
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("SESSION_RECONCILE_INTERVAL must be positive")
	}
	return nil
}

func (c Config) TrackerEnabled() bool {
	return c.TrackerBaseURL != "" && c.TrackerProject != ""
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
