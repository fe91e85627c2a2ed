// Package config loads the web server's settings from environment variables.
// Every field carries its variable name and default in struct tags; Load
// applies them and refuses to start on an invalid combination.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Analysis AnalysisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen interface
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the listen port
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout covers reading headers and the upload body
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout must exceed ANALYSIS_TIMEOUT or slow answers are cut off
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`

	// IdleTimeout closes idle keep-alive connections
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds draining in-flight requests on SIGTERM
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout cancels a handler's context
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"75s"`
}

// UploadConfig holds inventory file upload settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted inventory file in bytes
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`
}

// SessionConfig controls in-memory workspaces.
type SessionConfig struct {
	// TTL is how long an untouched workspace is kept (default: 2h)
	TTL time.Duration `env:"SESSION_TTL" default:"2h"`

	// SweepInterval is how often idle workspaces are evicted (default: 5m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`

	// MaxWorkspaces caps live workspaces; the least recently used is evicted (default: 100)
	MaxWorkspaces int `env:"SESSION_MAX_WORKSPACES" default:"100"`
}

// RateLimitConfig sets per-IP request budgets per minute.
type RateLimitConfig struct {
	// Enabled turns both limiters on
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit applies to uploads and analyses on top of the global budget
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig covers proxies, headers and API keys.
type SecurityConfig struct {
	// TrustedProxies lists CIDRs or IPs whose X-Forwarded-For / X-Real-IP is believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP adds a Content-Security-Policy that allows the htmx CDN
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey puts /api behind API_KEYS
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is comma-separated
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// AnalysisConfig holds settings for the natural-language analysis service.
// Analysis is disabled when APIKey is empty.
type AnalysisConfig struct {
	// APIKey is the Gemini API key; API_KEY is accepted for compatibility
	APIKey string `env:"GEMINI_API_KEY" envAlt:"API_KEY"`

	// Model is the Gemini model name (default: gemini-2.5-flash)
	Model string `env:"ANALYSIS_MODEL" default:"gemini-2.5-flash"`

	// Endpoint is the Generative Language API base URL
	Endpoint string `env:"ANALYSIS_ENDPOINT" default:"https://generativelanguage.googleapis.com/v1beta"`

	// Timeout bounds a single analysis call (default: 60s)
	Timeout time.Duration `env:"ANALYSIS_TIMEOUT" default:"60s"`

	// SampleRows is how many data lines are sent with each question (default: 50)
	SampleRows int `env:"ANALYSIS_SAMPLE_ROWS" default:"50"`

	// Temperature is the sampling temperature (default: 0.2)
	Temperature float64 `env:"ANALYSIS_TEMPERATURE" default:"0.2"`

	// MaxConcurrent is the maximum number of analyses in flight (default: 4)
	MaxConcurrent int `env:"ANALYSIS_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an analysis slot (default: 10s)
	MaxWaitTime time.Duration `env:"ANALYSIS_MAX_WAIT_TIME" default:"10s"`
}

// Enabled reports whether an API key is configured.
func (c *AnalysisConfig) Enabled() bool {
	return c.APIKey != ""
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
