package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lymphly/vps-ai-bridge/internal/api/handlers"
	"github.com/lymphly/vps-ai-bridge/internal/config"
	"github.com/lymphly/vps-ai-bridge/internal/logging"
	"github.com/lymphly/vps-ai-bridge/internal/middleware"
	"github.com/lymphly/vps-ai-bridge/internal/models"
	"github.com/lymphly/vps-ai-bridge/internal/services"
)

const testToken = "router-test-token-abcdef"

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeFace(_ context.Context, _ *models.AnalysisRequest, locale models.Locale) (*models.FaceAnalysisResult, error) {
	r := services.NormalizeFace(map[string]any{"score": 20.0}, locale)
	return &r, nil
}

func (stubAnalyzer) AnalyzeFood(_ context.Context, _ *models.AnalysisRequest, locale models.Locale) (*models.FoodAnalysisResult, error) {
	r := services.NormalizeFood(nil, locale)
	return &r, nil
}

type panicAnalyzer struct{ stubAnalyzer }

func (panicAnalyzer) AnalyzeFace(context.Context, *models.AnalysisRequest, models.Locale) (*models.FaceAnalysisResult, error) {
	panic("analyzer bug")
}

func newTestRouter(pace time.Duration, burst int) *gin.Engine {
	return newTestRouterWith(stubAnalyzer{}, pace, burst)
}

func newTestRouterWith(analyzer handlers.Analyzer, pace time.Duration, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(&Server{
		Config: config.Config{
			BearerToken:         testToken,
			MetricsEnabled:      true,
			AllowedOrigins:      []string{"*"},
			MaxBodyBytes:        1 << 20,
			RoutineAssetBaseURL: "https://assets.example.com/routines",
		},
		Analyzer:    analyzer,
		Locales:     services.NewLocaleResolver(models.LocaleEN),
		RateLimiter: middleware.NewRateLimiter(time.Hour, burst),
		Pacer:       middleware.NewPacer(pace),
		Started:     time.Now(),
	})
}

func TestRouterAuthAndRoutes(t *testing.T) {
	r := newTestRouter(0, 100)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		auth       string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"face requires auth", http.MethodPost, "/v1/analyze/face", `{"image_base64":"aGk="}`, "", http.StatusUnauthorized},
		{"food wrong token", http.MethodPost, "/v1/analyze/food", `{"image_base64":"aGk="}`, "Bearer nope", http.StatusUnauthorized},
		{"face ok", http.MethodPost, "/v1/analyze/face", `{"image_base64":"aGk="}`, "Bearer " + testToken, http.StatusOK},
		{"food ok", http.MethodPost, "/v1/analyze/food", `{"image_base64":"aGk="}`, "Bearer " + testToken, http.StatusOK},
		{"routine requires auth", http.MethodGet, "/v1/routines/daily", "", "", http.StatusUnauthorized},
		{"routine ok", http.MethodGet, "/v1/routines/daily?average_score=80", "", "Bearer " + testToken, http.StatusOK},
		{"unknown route", http.MethodGet, "/v1/nope", "", "Bearer " + testToken, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if w.Header().Get(logging.RequestIDHeader) == "" {
				t.Error("missing request id header")
			}
			if w.Code >= 400 && !strings.Contains(w.Body.String(), `"error"`) {
				t.Errorf("error response without {error}: %s", w.Body.String())
			}
		})
	}
}

func TestRouterPacesRejections(t *testing.T) {
	const floor = 120 * time.Millisecond
	r := newTestRouter(floor, 100)

	for _, auth := range []string{"", "Bearer wrong", "Bearer " + testToken} {
		req := httptest.NewRequest(http.MethodGet, "/v1/routines/daily", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()

		start := time.Now()
		r.ServeHTTP(w, req)
		if elapsed := time.Since(start); elapsed < floor {
			t.Errorf("auth %q: responded after %v, want at least %v", auth, elapsed, floor)
		}
	}
}

func TestRouterPacesPanics(t *testing.T) {
	const floor = 120 * time.Millisecond
	r := newTestRouterWith(panicAnalyzer{}, floor, 100)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze/face", strings.NewReader(`{"image_base64":"aGk="}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	start := time.Now()
	r.ServeHTTP(w, req)
	if elapsed := time.Since(start); elapsed < floor {
		t.Errorf("panic responded after %v, want at least %v", elapsed, floor)
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"internal error"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRouterRateLimit(t *testing.T) {
	r := newTestRouter(0, 1)

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/v1/routines/daily", nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first request status = %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", code)
	}
}

func TestCORSConfig(t *testing.T) {
	if cfg := corsConfig([]string{"*"}); !cfg.AllowAllOrigins {
		t.Error("wildcard should allow all origins")
	}
	cfg := corsConfig([]string{"https://app.example.com"})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 1 {
		t.Errorf("corsConfig() = %+v", cfg)
	}
}
