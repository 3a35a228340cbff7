package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
	if cfg.RateLimitMax != 20 {
		t.Errorf("RateLimitMax = %d, want 20", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow() != time.Hour {
		t.Errorf("RateLimitWindow() = %v, want 1h", cfg.RateLimitWindow())
	}
	if cfg.RateLimitFailOpen {
		t.Error("RateLimitFailOpen = true, want false")
	}
	if cfg.AuditTimeout != 30*time.Second {
		t.Errorf("AuditTimeout = %v, want 30s", cfg.AuditTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "10")
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "true")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_RATE", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.RateLimitMax != 5 {
		t.Errorf("RateLimitMax = %d, want 5", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow() != 10*time.Minute {
		t.Errorf("RateLimitWindow() = %v, want 10m", cfg.RateLimitWindow())
	}
	if !cfg.RateLimitFailOpen {
		t.Error("RateLimitFailOpen = false, want true")
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.FetchTimeout)
	}
	if cfg.FetchRate != 0.5 {
		t.Errorf("FetchRate = %v, want 0.5", cfg.FetchRate)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "port not a number", key: "PORT", value: "abc", wantErr: errInvalidPort},
		{name: "port out of range", key: "PORT", value: "70000", wantErr: errInvalidPort},
		{name: "unknown log format", key: "LOG_FORMAT", value: "xml", wantErr: errInvalidLogFormat},
		{name: "zero max", key: "RATE_LIMIT_MAX", value: "0", wantErr: errRateLimitMax},
		{name: "zero window", key: "RATE_LIMIT_WINDOW_MINUTES", value: "0", wantErr: errRateLimitWindow},
		{name: "bad duration", key: "AUDIT_TIMEOUT", value: "soon", wantErr: errInvalidDuration},
		{name: "negative duration", key: "FETCH_TIMEOUT", value: "-1s", wantErr: errInvalidDuration},
		{name: "negative fetch rate", key: "FETCH_RATE", value: "-2", wantErr: errFetchRate},
		{name: "max not a number", key: "RATE_LIMIT_MAX", value: "abc", wantErr: errInvalidNumber},
		{name: "window not a number", key: "RATE_LIMIT_WINDOW_MINUTES", value: "1h", wantErr: errInvalidNumber},
		{name: "fetch rate not a number", key: "FETCH_RATE", value: "fast", wantErr: errInvalidNumber},
		{name: "fail open not a bool", key: "RATE_LIMIT_FAIL_OPEN", value: "maybe", wantErr: errInvalidBool},
		{name: "trust proxy not a bool", key: "TRUST_PROXY", value: "yes please", wantErr: errInvalidBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
