package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	ServiceNow ServiceNowConfig
	Graph      GraphConfig
	Nexthink   NexthinkConfig
	GoogleAI   GoogleAIConfig
	Cache      CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN disables local
// persistence entirely.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer-token validation parameters.
type AuthConfig struct {
	Enabled               bool
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// ServiceNowConfig points at the ticketing system.
type ServiceNowConfig struct {
	InstanceURL    string
	Username       string
	Password       string
	TimeoutSeconds int
}

// GraphConfig points at the device-management system.
type GraphConfig struct {
	BaseURL        string
	AuthBaseURL    string
	TenantID       string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

// NexthinkConfig points at the diagnostics system.
type NexthinkConfig struct {
	APIURL         string
	AuthURL        string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

// GoogleAIConfig configures generated solution summaries. An empty API
// key disables generation; the knowledge-base path still works.
type GoogleAIConfig struct {
	APIKey string
	Model  string
}

// CacheConfig selects and sizes the response cache.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend    string
	MaxEntries int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "cockpit-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Enabled:               getEnvAsBool("AUTH_ENABLED", true),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		ServiceNow: ServiceNowConfig{
			InstanceURL:    os.Getenv("SERVICENOW_INSTANCE_URL"),
			Username:       os.Getenv("SERVICENOW_USERNAME"),
			Password:       os.Getenv("SERVICENOW_PASSWORD"),
			TimeoutSeconds: getEnvAsInt("SERVICENOW_TIMEOUT_SECONDS", 30),
		},
		Graph: GraphConfig{
			BaseURL:        getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
			AuthBaseURL:    getEnv("GRAPH_AUTH_BASE_URL", "https://login.microsoftonline.com"),
			TenantID:       os.Getenv("GRAPH_TENANT_ID"),
			ClientID:       os.Getenv("GRAPH_CLIENT_ID"),
			ClientSecret:   os.Getenv("GRAPH_CLIENT_SECRET"),
			TimeoutSeconds: getEnvAsInt("GRAPH_TIMEOUT_SECONDS", 30),
		},
		Nexthink: NexthinkConfig{
			APIURL:         os.Getenv("NEXTHINK_API_URL"),
			AuthURL:        os.Getenv("NEXTHINK_AUTH_URL"),
			ClientID:       os.Getenv("NEXTHINK_CLIENT_ID"),
			ClientSecret:   os.Getenv("NEXTHINK_CLIENT_SECRET"),
			TimeoutSeconds: getEnvAsInt("NEXTHINK_TIMEOUT_SECONDS", 30),
		},
		GoogleAI: GoogleAIConfig{
			APIKey: os.Getenv("GOOGLE_AI_API_KEY"),
			Model:  getEnv("GOOGLE_AI_MODEL", "gemini-2.0-flash"),
		},
		Cache: CacheConfig{
			Backend:    getEnv("CACHE_BACKEND", "memory"),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 10000),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the upstream call timeout.
func (c ServiceNowConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the upstream call timeout.
func (c GraphConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the upstream call timeout.
func (c NexthinkConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
