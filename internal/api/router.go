package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/api/handlers"
	"github.com/lymphly/vps-ai-bridge/internal/config"
	"github.com/lymphly/vps-ai-bridge/internal/logging"
	"github.com/lymphly/vps-ai-bridge/internal/metrics"
	"github.com/lymphly/vps-ai-bridge/internal/middleware"
	"github.com/lymphly/vps-ai-bridge/internal/services"
)

// Server holds everything the HTTP surface needs. It is built once at startup.
type Server struct {
	Config      config.Config
	Analyzer    handlers.Analyzer
	Locales     *services.LocaleResolver
	RateLimiter *middleware.RateLimiter
	Pacer       *middleware.Pacer
	Started     time.Time
}

// NewRouter assembles the gin engine: /health and /metrics unauthenticated,
// everything under /v1 paced, rate limited and bearer-authenticated.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("request_id", logging.RequestID(c)).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}))
	r.Use(logging.RequestLogger())
	r.Use(metrics.HTTPMetrics())
	r.Use(cors.New(corsConfig(s.Config.AllowedOrigins)))

	health := handlers.NewHealthHandler(middleware.AuthMode, s.Locales.Default(), s.Started)
	r.GET("/health", health.GetHealth)
	if s.Config.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	analysis := handlers.NewAnalysisHandler(s.Analyzer, s.Locales, s.Config.MaxBodyBytes)
	routines := handlers.NewRoutineHandler(s.Locales, s.Config.RoutineAssetBaseURL)

	v1 := r.Group("/v1",
		middleware.ResponsePacing(s.Pacer),
		s.RateLimiter.Middleware(),
		middleware.BearerAuth(s.Config.BearerToken),
	)
	{
		v1.POST("/analyze/face", analysis.AnalyzeFace)
		v1.POST("/analyze/food", analysis.AnalyzeFood)
		v1.GET("/routines/daily", routines.GetDailyRoutine)
	}

	// Unknown paths are paced too, so probing routes reveals nothing by timing.
	r.NoRoute(middleware.ResponsePacing(s.Pacer), func(c *gin.Context) {
		middleware.AbortWithStatus(c, http.StatusNotFound, "not found")
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept-Language", logging.RequestIDHeader},
		ExposeHeaders: []string{logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
