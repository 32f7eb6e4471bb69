package middleware

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-token-0123456789"

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + testSecret,
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "case insensitive Bearer",
			authHeader:     "bearer " + testSecret,
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "missing auth header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "authorization header required",
		},
		{
			name:           "invalid auth format - no Bearer",
			authHeader:     testSecret,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid authorization format",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic " + testSecret,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid authorization format",
		},
		{
			name:           "empty token",
			authHeader:     "Bearer   ",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid authorization format",
		},
		{
			name:           "wrong token same length",
			authHeader:     "Bearer " + strings.Repeat("x", len(testSecret)),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid token",
		},
		{
			name:           "token prefix",
			authHeader:     "Bearer " + testSecret[:10],
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(BearerAuth(testSecret))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			}
			if w.Code == http.StatusUnauthorized && strings.Contains(w.Body.String(), testSecret) {
				t.Error("response leaks the secret")
			}
		})
	}
}

func TestTokensEqual(t *testing.T) {
	tests := []struct {
		provided string
		secret   string
		want     bool
	}{
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "abcd", false},
		{"", "abc", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		if got := TokensEqual(tt.provided, tt.secret); got != tt.want {
			t.Errorf("TokensEqual(%q, %q) = %v, want %v", tt.provided, tt.secret, got, tt.want)
		}
	}
}

// TestTokensEqualTiming checks that a wrong-length token and a same-length
// wrong token take indistinguishable time to reject.
func TestTokensEqualTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test skipped in short mode")
	}

	secret := strings.Repeat("s", 32)
	sameLength := strings.Repeat("x", 32)
	shorter := strings.Repeat("x", 31)

	const rounds = 200
	const perRound = 2000

	measure := func(token string) time.Duration {
		start := time.Now()
		for i := 0; i < perRound; i++ {
			TokensEqual(token, secret)
		}
		return time.Since(start)
	}

	var a, b []time.Duration
	for i := 0; i < rounds; i++ {
		// Interleave to spread scheduler and frequency noise evenly.
		a = append(a, measure(sameLength))
		b = append(b, measure(shorter))
	}

	ma, mb := median(a), median(b)
	ratio := float64(ma) / float64(mb)
	if ratio < 0.75 || ratio > 1.33 {
		t.Errorf("median rejection time differs: same-length=%v shorter=%v ratio=%.2f", ma, mb, ratio)
	}
}

func median(ds []time.Duration) time.Duration {
	sorted := append([]time.Duration(nil), ds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}
