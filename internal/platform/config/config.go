package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	errInvalidPort      = errors.New("config: invalid PORT number")
	errInvalidLogFormat = errors.New("config: LOG_FORMAT must be json or text")
	errInvalidDuration  = errors.New("config: invalid duration")
	errInvalidNumber    = errors.New("config: invalid number")
	errInvalidBool      = errors.New("config: invalid boolean")
	errRateLimitMax     = errors.New("config: RATE_LIMIT_MAX must be at least 1")
	errRateLimitWindow  = errors.New("config: RATE_LIMIT_WINDOW_MINUTES must be at least 1")
	errFetchRate        = errors.New("config: FETCH_RATE must not be negative")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	AuditTimeout time.Duration
	FetchTimeout time.Duration
	FetchRate    float64

	RateLimitMax           int
	RateLimitWindowMinutes int
	RateLimitFailOpen      bool

	IdentitySalt        string
	TrustProxy          bool
	AllowPrivateTargets bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	var env envReader
	cfg := Config{
		Port:                   getEnv("PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "ERROR"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
		AuditTimeout:           env.asDuration("AUDIT_TIMEOUT", 30*time.Second),
		FetchTimeout:           env.asDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchRate:              env.asFloat("FETCH_RATE", 5),
		RateLimitMax:           env.asInt("RATE_LIMIT_MAX", 20),
		RateLimitWindowMinutes: env.asInt("RATE_LIMIT_WINDOW_MINUTES", 60),
		RateLimitFailOpen:      env.asBool("RATE_LIMIT_FAIL_OPEN", false),
		IdentitySalt:           getEnv("IDENTITY_SALT", ""),
		TrustProxy:             env.asBool("TRUST_PROXY", false),
		AllowPrivateTargets:    env.asBool("ALLOW_PRIVATE_TARGETS", false),
	}
	if env.err != nil {
		return Config{}, env.err
	}

	return cfg, cfg.validate()
}

// RateLimitWindow returns the admission window as a duration.
func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMinutes) * time.Minute
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%w: got %q", errInvalidLogFormat, c.LogFormat)
	}

	if c.RateLimitMax < 1 {
		return fmt.Errorf("%w: got %d", errRateLimitMax, c.RateLimitMax)
	}

	if c.RateLimitWindowMinutes < 1 {
		return fmt.Errorf("%w: got %d", errRateLimitWindow, c.RateLimitWindowMinutes)
	}

	if c.FetchRate < 0 {
		return fmt.Errorf("%w: got %v", errFetchRate, c.FetchRate)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envReader parses typed variables and keeps the first parse error.
type envReader struct {
	err error
}

func (e *envReader) fail(sentinel error, key, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q", sentinel, key, value)
	}
}

func (e *envReader) asInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		e.fail(errInvalidNumber, key, s)
		return fallback
	}
	return v
}

func (e *envReader) asFloat(key string, fallback float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		e.fail(errInvalidNumber, key, s)
		return fallback
	}
	return v
}

func (e *envReader) asBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		e.fail(errInvalidBool, key, s)
		return fallback
	}
	return v
}

func (e *envReader) asDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		e.fail(errInvalidDuration, key, s)
		return fallback
	}
	return d
}
