package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

const minTokenLength = 16

// retentionMargin is added to the model timeout to get the smallest retention
// window that can never reclaim a file still used by an in-flight request.
const retentionMargin = time.Minute

type Config struct {
	// Server
	Port           string
	MetricsEnabled bool
	AllowedOrigins []string

	// Secrets
	GeminiAPIKey string
	BearerToken  string

	// Models
	FaceModel    string
	FoodModel    string
	ModelTimeout time.Duration

	// Timing
	MinResponseDelay time.Duration

	// Temp store
	TempDir         string
	CleanupInterval time.Duration
	TempRetention   time.Duration

	// Limits
	MaxImageBytes int64
	MaxBodyBytes  int64

	// Rate limiting (per client IP)
	RateLimitEvery time.Duration
	RateLimitBurst int

	// Routines and locale
	RoutineAssetBaseURL string
	DefaultLocale       models.Locale

	// Analysis cache
	CacheDBPath string
	CacheTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("config: could not parse .env file")
	}

	cleanup := envDur("CLEANUP_INTERVAL", 15*time.Minute)

	cfg := Config{
		Port:           envStr("PORT", "8080"),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
		AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		GeminiAPIKey: secret("GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY_FILE"),
		BearerToken:  secret("BRIDGE_TOKEN", "", "BRIDGE_TOKEN_FILE"),

		FaceModel:    envStr("FACE_MODEL", "gemini-2.5-flash"),
		FoodModel:    envStr("FOOD_MODEL", "gemini-2.5-flash"),
		ModelTimeout: envDur("MODEL_TIMEOUT", 45*time.Second),

		MinResponseDelay: envDur("MIN_RESPONSE_DELAY", 900*time.Millisecond),

		TempDir:         envStr("TEMP_DIR", filepath.Join(os.TempDir(), "vps-ai-bridge")),
		CleanupInterval: cleanup,
		TempRetention:   envDur("TEMP_RETENTION", cleanup),

		MaxImageBytes: int64(envInt("MAX_IMAGE_BYTES", 15<<20)),
		MaxBodyBytes:  int64(envInt("MAX_BODY_BYTES", 24<<20)),

		RateLimitEvery: envDur("RATE_LIMIT_EVERY", 2*time.Second),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 10),

		RoutineAssetBaseURL: strings.TrimRight(envStr("ROUTINE_ASSET_BASE_URL", "https://assets.lymphly.app/routines"), "/"),
		DefaultLocale:       models.Locale(strings.ToLower(envStr("DEFAULT_LOCALE", "en"))),

		CacheDBPath: envStr("CACHE_DB_PATH", ""),
		CacheTTL:    envDur("CACHE_TTL", 24*time.Hour),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
	}

	cfg.applyInvariants()
	return cfg
}

// applyInvariants corrects values that would break guarantees elsewhere.
func (c *Config) applyInvariants() {
	if !c.DefaultLocale.IsSupported() {
		log.Warn().Str("locale", string(c.DefaultLocale)).Msg("config: DEFAULT_LOCALE not supported, using en")
		c.DefaultLocale = models.LocaleEN
	}

	// The reclaimer must never delete a file an in-flight request still uses.
	if floor := c.ModelTimeout + retentionMargin; c.TempRetention < floor {
		log.Warn().
			Dur("configured", c.TempRetention).
			Dur("applied", floor).
			Msg("config: TEMP_RETENTION shorter than the longest request, raising it")
		c.TempRetention = floor
	}

	if c.MaxBodyBytes < c.MaxImageBytes {
		// base64 inflates by 4/3
		c.MaxBodyBytes = c.MaxImageBytes*4/3 + 1<<20
	}
}

// Validate fails when a secret the process cannot run without is missing.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY / GEMINI_API_KEY_FILE) must be set"))
	}
	if strings.TrimSpace(c.BearerToken) == "" {
		errs = append(errs, errors.New("BRIDGE_TOKEN (or BRIDGE_TOKEN_FILE) must be set"))
	} else if len(c.BearerToken) < minTokenLength {
		errs = append(errs, fmt.Errorf("BRIDGE_TOKEN must be at least %d characters", minTokenLength))
	}
	return errors.Join(errs...)
}

// secret reads key, then fallbackKey, then the contents of the file named by fileKey.
func secret(key, fallbackKey, fileKey string) string {
	if v := envStr(key, ""); v != "" {
		return v
	}
	if fallbackKey != "" {
		if v := envStr(fallbackKey, ""); v != "" {
			return v
		}
	}
	if path := envStr(fileKey, ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("var", fileKey).Msg("config: could not read secret file")
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return ""
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
