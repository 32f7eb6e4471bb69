package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/logging"
	"github.com/lymphly/vps-ai-bridge/internal/models"
	"github.com/lymphly/vps-ai-bridge/internal/services"
)

// Analyzer runs the model-backed analyses.
type Analyzer interface {
	AnalyzeFace(ctx context.Context, req *models.AnalysisRequest, locale models.Locale) (*models.FaceAnalysisResult, error)
	AnalyzeFood(ctx context.Context, req *models.AnalysisRequest, locale models.Locale) (*models.FoodAnalysisResult, error)
}

type AnalysisHandler struct {
	analyzer     Analyzer
	locales      *services.LocaleResolver
	maxBodyBytes int64
}

func NewAnalysisHandler(analyzer Analyzer, locales *services.LocaleResolver, maxBodyBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:     analyzer,
		locales:      locales,
		maxBodyBytes: maxBodyBytes,
	}
}

// AnalyzeFace handles POST /v1/analyze/face
func (h *AnalysisHandler) AnalyzeFace(c *gin.Context) {
	req, locale, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.analyzer.AnalyzeFace(c.Request.Context(), req, locale)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeFood handles POST /v1/analyze/food
func (h *AnalysisHandler) AnalyzeFood(c *gin.Context) {
	req, locale, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.analyzer.AnalyzeFood(c.Request.Context(), req, locale)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bind decodes the body and resolves the response locale. On failure the
// error response is already written.
func (h *AnalysisHandler) bind(c *gin.Context) (*models.AnalysisRequest, models.Locale, bool) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(c, services.InputError("request body too large", err))
		case errors.Is(err, io.EOF):
			respondError(c, services.InputError("request body is empty", err))
		default:
			respondError(c, services.InputError("invalid JSON body", err))
		}
		return nil, "", false
	}

	if req.ImageBase64 == "" {
		respondError(c, services.InputError("image_base64 is required", services.ErrEmptyImage))
		return nil, "", false
	}

	return &req, h.locales.Resolve(req.Locale, c.GetHeader("Accept-Language")), true
}

// respondError writes the uniform {error} body. Internal causes are logged, never sent.
func respondError(c *gin.Context, err error) {
	status := services.StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", logging.RequestID(c)).
			Str("route", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": services.PublicMessage(err)})
}
