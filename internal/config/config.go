// Package config loads service configuration from the environment and from
// the optional difficulty preset file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config aggregates every tunable of the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	AI       AIConfig
	Cache    CacheConfig
	Cleanup  CleanupConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string  `env:"SERVER_HOST,default=0.0.0.0"`
	Port            int     `env:"SERVER_PORT,default=8000"`
	ReadTimeout     int     `env:"SERVER_READ_TIMEOUT,default=15"`
	WriteTimeout    int     `env:"SERVER_WRITE_TIMEOUT,default=30"`
	ShutdownTimeout int     `env:"SERVER_SHUTDOWN_TIMEOUT,default=10"`
	RateLimit       float64 `env:"SERVER_RATE_LIMIT,default=25"`
	RateBurst       int     `env:"SERVER_RATE_BURST,default=50"`
	CORSOrigins     string  `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
}

// DatabaseConfig controls the relational store. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	Driver          string `env:"DB_DRIVER,default=postgres"`
	DSN             string `env:"DATABASE_URL,default="`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime int    `env:"DB_CONN_MAX_LIFETIME,default=300"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string `env:"LOG_LEVEL,default=info"`
	Format     string `env:"LOG_FORMAT,default=text"`
	Output     string `env:"LOG_OUTPUT,default=stdout"`
	FilePrefix string `env:"LOG_FILE_PREFIX,default=quizzer"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	Secret        string `env:"SECRET_KEY,default=dev-secret-change-me"`
	TokenTTLHours int    `env:"TOKEN_TTL_HOURS,default=8"`
	Issuer        string `env:"TOKEN_ISSUER,default=ai-quizzer"`
}

// AIConfig controls the Gemini question generator. An empty APIKey disables
// it and the arithmetic fallback generator is used instead.
type AIConfig struct {
	APIKey         string `env:"GEMINI_API_KEY,default="`
	Model          string `env:"GEMINI_MODEL,default=gemini-2.5-flash-lite"`
	Endpoint       string `env:"GEMINI_ENDPOINT,default=https://generativelanguage.googleapis.com"`
	TimeoutSeconds int    `env:"GEMINI_TIMEOUT,default=20"`
}

// CacheConfig controls the optional Redis quiz cache. An empty Addr disables
// caching.
type CacheConfig struct {
	Addr       string `env:"REDIS_ADDR,default="`
	Password   string `env:"REDIS_PASSWORD,default="`
	DB         int    `env:"REDIS_DB,default=0"`
	TTLSeconds int    `env:"CACHE_TTL,default=300"`
}

// CleanupConfig controls background maintenance.
type CleanupConfig struct {
	SessionPurgeSchedule string `env:"SESSION_PURGE_SCHEDULE,default=@every 10m"`
}

// Load decodes configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		return nil, fmt.Errorf("token TTL must be positive")
	}
	return &cfg, nil
}

// TokenTTL returns the configured token lifetime as a duration.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Timeout returns the configured AI request timeout as a duration.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the configured cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// AllowedOrigins splits the CORS origin list.
func (c ServerConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Addr returns the host:port bind address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
