package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	Timezone string

	// Storage
	StorageDriver string // "postgres" | "sqlite"
	DatabaseURL   string
	SQLitePath    string

	// Redis
	RedisURL string

	// JWT
	JWTSecret       string
	SessionTokenTTL time.Duration

	// AI
	AIProvider          string // "gemini" | "openai"
	GeminiAPIKey        string
	GeminiModel         string
	GeminiImageModel    string
	OpenAIAPIKey        string
	OpenAIModel         string
	AIConcurrentReqs    int
	AIRequestsPerMinute int
	GenerationTimeout   time.Duration

	// Session
	ChatErrorPolicy string // "transcript" | "banner"
	SessionIdleTTL  time.Duration
	MaxImageBytes   int
	MealPlanWorkers int

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		Timezone:            getEnvOrDefault("APP_TIMEZONE", "America/Sao_Paulo"),
		StorageDriver:       strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "postgres")),
		DatabaseURL:         getEnvOrDefault("DATABASE_URL", ""),
		SQLitePath:          getEnvOrDefault("SQLITE_PATH", "./data/nutricionista.db"),
		RedisURL:            getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:           mustGetEnv("JWT_SECRET"),
		SessionTokenTTL:     getEnvAsDurationOrDefault("SESSION_TOKEN_TTL", 30*24*time.Hour),
		AIProvider:          strings.ToLower(getEnvOrDefault("AI_PROVIDER", "gemini")),
		GeminiAPIKey:        getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:    getEnvOrDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:        getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AIConcurrentReqs:    getEnvAsIntOrDefault("AI_CONCURRENT_REQUESTS", 5),
		AIRequestsPerMinute: getEnvAsIntOrDefault("AI_REQUESTS_PER_MINUTE", 30),
		GenerationTimeout:   getEnvAsDurationOrDefault("GENERATION_TIMEOUT", 60*time.Second),
		ChatErrorPolicy:     strings.ToLower(getEnvOrDefault("CHAT_ERROR_POLICY", "transcript")),
		SessionIdleTTL:      getEnvAsDurationOrDefault("SESSION_IDLE_TTL", 2*time.Hour),
		MaxImageBytes:       getEnvAsIntOrDefault("MAX_IMAGE_BYTES", 8<<20),
		MealPlanWorkers:     getEnvAsIntOrDefault("MEAL_PLAN_WORKERS", 2),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
		LogOutput:           getEnvOrDefault("LOG_OUTPUT", "stdout"),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks settings whose requirements depend on other settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORAGE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.AIProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when AI_PROVIDER=gemini"))
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}

	if c.ChatErrorPolicy != "transcript" && c.ChatErrorPolicy != "banner" {
		errs = append(errs, fmt.Errorf("unknown CHAT_ERROR_POLICY %q", c.ChatErrorPolicy))
	}
	if c.AIConcurrentReqs <= 0 {
		errs = append(errs, errors.New("AI_CONCURRENT_REQUESTS must be positive"))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_BYTES must be positive"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err))
	}

	return errors.Join(errs...)
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// Accepts Go duration strings ("90s", "2h") or a bare number of seconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}
