// Package config loads service configuration from the environment.
//
// Outside production a local .env file is read first so developers can keep
// DATABASE_URL and SECRET out of their shell profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig describes the running process.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string
}

// TracingConfig controls the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// ProfilingConfig controls the Pyroscope agent.
type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

// SessionConfig holds cookie and store settings for browser sessions.
type SessionConfig struct {
	Secret       string
	CookieName   string
	CookieSecure bool
	MaxAge       string
	TouchAfter   string
	CleanupCron  string
}

// SecurityConfig holds credential and throttling settings.
type SecurityConfig struct {
	BcryptCost     int
	LoginRateLimit float64
	LoginRateBurst int
}

// ServerConfig holds HTTP server timings.
type ServerConfig struct {
	RequestTimeout      string
	ShutdownTimeout     string
	ReadinessDrainDelay string
}

// Config is the full service configuration.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Security  SecurityConfig
	Server    ServerConfig
}

// Load reads configuration from the environment, loading .env first unless
// the service runs in production.
func Load() *Config {
	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))
	if env != "production" {
		// A missing .env is normal; real environment variables still apply.
		_ = godotenv.Load()
		env = getEnv("APP_ENV", getEnv("NODE_ENV", env))
	}

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "wanderlust"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     env,
			Port:    getEnv("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
		},
		Database: DatabaseConfig{
			URL:      firstEnv("DATABASE_URL", "ATLASDB_URL", "MONGO_URI"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Session: SessionConfig{
			Secret:       os.Getenv("SECRET"),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", env == "production"),
			MaxAge:       getEnv("SESSION_MAX_AGE", "168h"),
			TouchAfter:   getEnv("SESSION_TOUCH_AFTER", "24h"),
			CleanupCron:  getEnv("SESSION_CLEANUP_CRON", "@every 1h"),
		},
		Security: SecurityConfig{
			BcryptCost:     getEnvInt("BCRYPT_COST", 10),
			LoginRateLimit: getEnvFloat("LOGIN_RATE_LIMIT", 0.2),
			LoginRateBurst: getEnvInt("LOGIN_RATE_BURST", 10),
		},
		Server: ServerConfig{
			RequestTimeout:      getEnv("REQUEST_TIMEOUT", "15s"),
			ShutdownTimeout:     getEnv("SHUTDOWN_TIMEOUT", "10s"),
			ReadinessDrainDelay: getEnv("READINESS_DRAIN_DELAY", "0s"),
		},
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Service.Port))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SECRET is required"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate))
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [4,31], got %d", c.Security.BcryptCost))
	}

	for name, value := range map[string]string{
		"SESSION_MAX_AGE":       c.Session.MaxAge,
		"SESSION_TOUCH_AFTER":   c.Session.TouchAfter,
		"REQUEST_TIMEOUT":       c.Server.RequestTimeout,
		"SHUTDOWN_TIMEOUT":      c.Server.ShutdownTimeout,
		"READINESS_DRAIN_DELAY": c.Server.ReadinessDrainDelay,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Service.Env, "production")
}

// GetSessionMaxAgeDuration returns the absolute session lifetime.
func (c *Config) GetSessionMaxAgeDuration() time.Duration {
	return parseDuration(c.Session.MaxAge, 7*24*time.Hour)
}

// GetSessionTouchAfterDuration returns how long an unmodified session may go
// without being refreshed in the store.
func (c *Config) GetSessionTouchAfterDuration() time.Duration {
	return parseDuration(c.Session.TouchAfter, 24*time.Hour)
}

// GetRequestTimeoutDuration returns the per-request deadline.
func (c *Config) GetRequestTimeoutDuration() time.Duration {
	return parseDuration(c.Server.RequestTimeout, 15*time.Second)
}

// GetShutdownTimeoutDuration returns the graceful shutdown budget.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetReadinessDrainDelayDuration returns how long /ready reports
// shutting_down before the HTTP server stops accepting connections.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return parseDuration(c.Server.ReadinessDrainDelay, 0)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}
