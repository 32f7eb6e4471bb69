package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "FACE_MODEL", "MIN_RESPONSE_DELAY", "CLEANUP_INTERVAL", "TEMP_RETENTION",
		"DEFAULT_LOCALE", "MODEL_TIMEOUT", "CACHE_DB_PATH", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.FaceModel != "gemini-2.5-flash" {
		t.Errorf("FaceModel = %q", cfg.FaceModel)
	}
	if cfg.MinResponseDelay != 900*time.Millisecond {
		t.Errorf("MinResponseDelay = %v", cfg.MinResponseDelay)
	}
	if cfg.TempRetention != cfg.CleanupInterval {
		t.Errorf("TempRetention = %v, want cleanup interval %v", cfg.TempRetention, cfg.CleanupInterval)
	}
	if cfg.DefaultLocale != models.LocaleEN {
		t.Errorf("DefaultLocale = %q, want en", cfg.DefaultLocale)
	}
	if cfg.CacheDBPath != "" {
		t.Errorf("cache should be disabled by default, got %q", cfg.CacheDBPath)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadUnsupportedDefaultLocaleFallsBack(t *testing.T) {
	t.Setenv("DEFAULT_LOCALE", "xx")
	if got := Load().DefaultLocale; got != models.LocaleEN {
		t.Errorf("DefaultLocale = %q, want en", got)
	}

	t.Setenv("DEFAULT_LOCALE", "JA")
	if got := Load().DefaultLocale; got != models.LocaleJA {
		t.Errorf("DefaultLocale = %q, want ja", got)
	}
}

func TestRetentionRaisedAboveModelTimeout(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "30s")
	t.Setenv("CLEANUP_INTERVAL", "10s")
	t.Setenv("TEMP_RETENTION", "")

	cfg := Load()
	if cfg.CleanupInterval != 10*time.Second {
		t.Errorf("CleanupInterval = %v, want 10s", cfg.CleanupInterval)
	}
	if want := 30*time.Second + retentionMargin; cfg.TempRetention != want {
		t.Errorf("TempRetention = %v, want %v", cfg.TempRetention, want)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("MIN_RESPONSE_DELAY", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := Load()
	if cfg.RateLimitBurst != 10 {
		t.Errorf("RateLimitBurst = %d, want 10", cfg.RateLimitBurst)
	}
	if cfg.MinResponseDelay != 900*time.Millisecond {
		t.Errorf("MinResponseDelay = %v", cfg.MinResponseDelay)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled should keep its default")
	}
}

func TestSecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  file-token-0123456789\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BRIDGE_TOKEN", "")
	t.Setenv("BRIDGE_TOKEN_FILE", path)

	if got := Load().BearerToken; got != "file-token-0123456789" {
		t.Errorf("BearerToken = %q", got)
	}
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	if got := Load().GeminiAPIKey; got != "google-key" {
		t.Errorf("GeminiAPIKey = %q, want google-key", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{GeminiAPIKey: "k", BearerToken: "0123456789abcdef"}, ""},
		{"missing key", Config{BearerToken: "0123456789abcdef"}, "GEMINI_API_KEY"},
		{"missing token", Config{GeminiAPIKey: "k"}, "BRIDGE_TOKEN"},
		{"short token", Config{GeminiAPIKey: "k", BearerToken: "short"}, "at least"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
