// Package config provides centralized configuration for the submission
// gateway. Settings are loaded from environment variables with sensible
// defaults and validated on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all gateway configuration.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Upload  UploadConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
	Journal JournalConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body.
	// Submissions carry photo attachments, so this is generous (default: 120s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"120s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0,
	// disabled: a submission response waits on the backend round trips)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// BackendConfig holds the report-management backend connection settings.
type BackendConfig struct {
	// BaseURL is the backend API root (required)
	BaseURL string `env:"RMS_BASE_URL" required:"true"`

	// Token is the bearer credential sent on every backend call
	Token string `env:"RMS_TOKEN"`
}

// UploadConfig holds image upload settings.
type UploadConfig struct {
	// MaxImageSize is the maximum allowed size per image in bytes (default: 20MB)
	MaxImageSize int64 `env:"UPLOAD_MAX_IMAGE_SIZE" default:"20971520"`

	// MaxFormSize is the maximum allowed size for a whole submission,
	// images included (default: 200MB)
	MaxFormSize int64 `env:"UPLOAD_MAX_FORM_SIZE" default:"209715200"`

	// MaxConcurrent is the maximum number of parallel image uploads against
	// the backend (default: 8)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"8"`

	// MaxWaitTime is how long an upload waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// SubmitLimit is requests per minute for submission endpoints (default: 10)
	SubmitLimit int `env:"RATE_LIMIT_SUBMIT" default:"10"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// JournalConfig holds the optional submission journal settings.
type JournalConfig struct {
	// DatabaseURL enables the Postgres submission journal when set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
}

// Enabled reports whether the journal is configured.
func (c *JournalConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
