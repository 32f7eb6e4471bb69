// server runs the AI analysis bridge HTTP API.
//
// Configuration is read from the environment (and a .env file if present);
// see internal/config for the variables.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/api"
	"github.com/lymphly/vps-ai-bridge/internal/config"
	"github.com/lymphly/vps-ai-bridge/internal/database"
	"github.com/lymphly/vps-ai-bridge/internal/logging"
	"github.com/lymphly/vps-ai-bridge/internal/middleware"
	"github.com/lymphly/vps-ai-bridge/internal/services"
)

const shutdownTimeout = 20 * time.Second

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	preprocessor, err := services.NewImagePreprocessor(cfg.TempDir, cfg.MaxImageBytes)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.TempDir).Msg("failed to prepare temp store")
	}

	modelClient, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create model client")
	}

	// Analysis cache is optional
	var cache *services.AnalysisCacheService
	if cfg.CacheDBPath != "" {
		db, err := database.Open(cfg.CacheDBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open analysis cache")
		}
		defer database.Close(db)
		cache = services.NewAnalysisCacheService(db, cfg.CacheTTL)
		go cache.StartPurge(ctx, cfg.CleanupInterval)
	} else {
		log.Info().Msg("analysis cache disabled (CACHE_DB_PATH not set)")
	}

	reclaimer := services.NewTempReclaimer(cfg.TempDir, cfg.CleanupInterval, cfg.TempRetention)
	go reclaimer.Start(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitEvery, cfg.RateLimitBurst)
	go limiter.StartCleanup(ctx, cfg.CleanupInterval)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(&api.Server{
		Config:      cfg,
		Analyzer:    services.NewAnalysisService(preprocessor, modelClient, cache, cfg.FaceModel, cfg.FoodModel),
		Locales:     services.NewLocaleResolver(cfg.DefaultLocale),
		RateLimiter: limiter,
		Pacer:       middleware.NewPacer(cfg.MinResponseDelay),
		Started:     time.Now(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Model timeout plus pacing plus margin.
		WriteTimeout: cfg.ModelTimeout + cfg.MinResponseDelay + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("face_model", cfg.FaceModel).
			Str("food_model", cfg.FoodModel).
			Str("default_locale", string(cfg.DefaultLocale)).
			Dur("min_response_delay", cfg.MinResponseDelay).
			Msg("ai bridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
