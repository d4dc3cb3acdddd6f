package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MemoryDatabaseURL selects the in-process task store instead of PostgreSQL
const MemoryDatabaseURL = "memory"

// minJWTSecretLength mirrors auth.MinSecretLength
const minJWTSecretLength = 16

// Config holds application configuration
type Config struct {
	DatabaseURL     string
	AutoMigrate     bool
	ServerPort      string
	FrontendURL     string
	EnableHSTS      bool
	ServerDebugMode bool
	RequestTimeout  time.Duration
	MaxRequestBytes int64

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	IDPIssuer   string
	IDPJWKSURL  string
	IDPAudience string

	RedisURL      string
	StatsCacheTTL time.Duration
	RateLimit     string

	RabbitMQURL string

	OTELEnabled  bool
	OTELEndpoint string
	OTELInsecure bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := envReader(getenv)

	cfg := &Config{
		DatabaseURL:     env.get("DATABASE_URL", ""),
		AutoMigrate:     env.getBool("AUTO_MIGRATE", true),
		ServerPort:      env.get("SERVER_PORT", "8080"),
		FrontendURL:     env.get("FRONTEND_URL", "http://localhost:5173"),
		EnableHSTS:      env.getBool("ENABLE_HSTS", false),
		ServerDebugMode: env.getBool("SERVER_DEBUG_MODE", false),
		RequestTimeout:  env.getDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBytes: int64(env.getInt("MAX_REQUEST_BYTES", 1<<20)),

		JWTSecret:   env.get("TASKS_JWT_SECRET", ""),
		JWTIssuer:   env.get("JWT_ISSUER", "tasks-api"),
		JWTAudience: env.get("JWT_AUDIENCE", "tasks-web"),
		JWTTTL:      env.getDuration("JWT_TTL", 7*24*time.Hour),

		IDPIssuer:   env.get("IDP_ISSUER", ""),
		IDPJWKSURL:  env.get("IDP_JWKS_URL", ""),
		IDPAudience: env.get("IDP_AUDIENCE", ""),

		RedisURL:      env.get("REDIS_URL", ""),
		StatsCacheTTL: env.getDuration("STATS_CACHE_TTL", 30*time.Second),
		RateLimit:     env.get("RATE_LIMIT", "20-S"),

		RabbitMQURL: env.get("RABBITMQ_URL", ""),

		OTELEnabled:  env.getBool("OTEL_ENABLED", false),
		OTELEndpoint: env.get("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELInsecure: env.getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required (use %q for the in-memory store)", MemoryDatabaseURL)
	}

	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("TASKS_JWT_SECRET is required and must be at least %d bytes", minJWTSecretLength)
	}

	if cfg.IDPJWKSURL != "" && cfg.IDPIssuer == "" {
		return nil, fmt.Errorf("IDP_ISSUER is required when IDP_JWKS_URL is set")
	}

	return cfg, nil
}

// UseMemoryStore reports whether the in-memory task store was requested
func (c *Config) UseMemoryStore() bool {
	return c.DatabaseURL == MemoryDatabaseURL
}

// IdentityProviderEnabled reports whether identity-provider tokens are accepted
func (c *Config) IdentityProviderEnabled() bool {
	return c.IDPJWKSURL != ""
}

// AllowedOrigins splits FRONTEND_URL on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

type envReader func(string) string

func (e envReader) get(key, defaultValue string) string {
	if value := strings.TrimSpace(e(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	if value := e.get(key, ""); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e envReader) getInt(key string, defaultValue int) int {
	if value := e.get(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e.get(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
